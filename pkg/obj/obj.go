// Package obj provides a streaming parser for Wavefront OBJ geometry.
//
// Input is consumed one byte at a time by a line scanner that dispatches to
// small per-record field parsers. Decoded records are pushed into a Builder
// which keeps the coordinate pools of the current instance and expands faces
// into flat, render-ready buffers grouped by object, group, material and
// smoothing group.
package obj

import (
	"fmt"

	"go.uber.org/zap"
)

// Vector strides.
const (
	VertexStride = 3
	NormalStride = 3
	UVStride     = 2
)

// DefaultName is used for object, group and material until the input sets one.
const DefaultName = "none"

// FaceFormat identifies which attributes a face record references and
// whether it is a triangle or a quad.
type FaceFormat int

// Face format codes.
const (
	FaceVertexUVNormal FaceFormat = 0 // f v/vt/vn v/vt/vn v/vt/vn
	FaceVertexUV       FaceFormat = 1 // f v/vt v/vt v/vt
	FaceVertexNormal   FaceFormat = 2 // f v//vn v//vn v//vn
	FaceVertex         FaceFormat = 3 // f v v v

	quadOffset FaceFormat = 10

	FaceVertexUVNormalQuad = FaceVertexUVNormal + quadOffset
	FaceVertexUVQuad       = FaceVertexUV + quadOffset
	FaceVertexNormalQuad   = FaceVertexNormal + quadOffset
	FaceVertexQuad         = FaceVertex + quadOffset
)

// Base returns the format with the quad flag removed.
func (f FaceFormat) Base() FaceFormat {
	if f >= quadOffset {
		return f - quadOffset
	}
	return f
}

// IsQuad reports whether the format describes four vertex references.
func (f FaceFormat) IsQuad() bool {
	return f >= quadOffset
}

// HasUV reports whether face references carry a texture coordinate index.
func (f FaceFormat) HasUV() bool {
	b := f.Base()
	return b == FaceVertexUVNormal || b == FaceVertexUV
}

// HasNormal reports whether face references carry a normal index.
func (f FaceFormat) HasNormal() bool {
	b := f.Base()
	return b == FaceVertexUVNormal || b == FaceVertexNormal
}

// IndicesPerVertex returns how many integers make up one vertex reference.
func (f FaceFormat) IndicesPerVertex() int {
	switch f.Base() {
	case FaceVertexUVNormal:
		return 3
	case FaceVertexUV, FaceVertexNormal:
		return 2
	default:
		return 1
	}
}

// String returns a human-readable format name.
func (f FaceFormat) String() string {
	var name string
	switch f.Base() {
	case FaceVertexUVNormal:
		name = "vertex/uv/normal"
	case FaceVertexUV:
		name = "vertex/uv"
	case FaceVertexNormal:
		name = "vertex//normal"
	case FaceVertex:
		name = "vertex"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
	if f.IsQuad() {
		return name + " quad"
	}
	return name
}

// Options configures a Parser and its Builder.
type Options struct {
	// DescriptorPerSmoothingGroup keys sub-meshes by the literal smoothing
	// group id. When false all non-zero groups share one "smooth" sub-mesh
	// and group 0 keeps its own "flat" sub-mesh.
	DescriptorPerSmoothingGroup bool

	// ImplicitObjectSplit starts a new instance when a vertex line follows
	// faces without an "o" record in between.
	ImplicitObjectSplit bool

	// WarnUnsupported logs a warning the first time each unsupported record
	// keyword (vp, l, p, ...) is skipped.
	WarnUnsupported bool

	// StreamInstances hands every flushed instance to the sink immediately
	// instead of holding them until Finish succeeds.
	StreamInstances bool

	// Logger receives debug reports and warnings. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ImplicitObjectSplit: true,
		WarnUnsupported:     true,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
