// Package mesh turns the sub-meshes produced by the OBJ parser into
// render-ready meshes and writes them out as binary buffers.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objstream/pkg/encoding"
	"github.com/Faultbox/objstream/pkg/obj"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns the extent of the box on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Mesh is one non-indexed triangle mesh ready for upload.
type Mesh struct {
	Instance       int
	ObjectName     string
	GroupName      string
	MaterialName   string
	SmoothingGroup int

	// FlatShading is set for smoothing group 0.
	FlatShading bool

	Positions []float32 // stride 3
	Normals   []float32 // stride 3
	UVs       []float32 // stride 2, nil without texture coordinates

	// NormalsComputed is set when the file had no normals for this mesh.
	NormalsComputed bool

	Bounds Bounds
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return m.VertexCount() / 3
}

// Options configures a Collector.
type Options struct {
	// ComputeNormals fills in face normals for meshes read without them.
	ComputeNormals bool

	// Names decodes object, group and material names. Nil keeps raw bytes.
	Names *encoding.NameDecoder

	Logger *zap.Logger
}

// Collector is an obj.MeshSink that keeps every mesh it is given.
type Collector struct {
	opts   Options
	log    *zap.Logger
	meshes []*Mesh
	err    error
}

// NewCollector creates an empty collector.
func NewCollector(opts Options) *Collector {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{opts: opts, log: log}
}

// BuildMeshes converts the sub-meshes of one instance.
func (c *Collector) BuildMeshes(instance int, subs []*obj.SubMesh) error {
	for _, sub := range subs {
		m := c.build(instance, sub)
		c.log.Debug("mesh built",
			zap.Int("instance", instance),
			zap.Int("mesh", len(c.meshes)),
			zap.String("object", m.ObjectName),
			zap.String("group", m.GroupName),
			zap.String("material", m.MaterialName),
			zap.Int("smoothingGroup", m.SmoothingGroup),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("uvs", len(m.UVs)/obj.UVStride),
			zap.Int("normals", len(m.Normals)/obj.NormalStride),
			zap.Bool("normalsComputed", m.NormalsComputed))
		c.meshes = append(c.meshes, m)
	}
	return nil
}

// Abort drops everything collected so far.
func (c *Collector) Abort(err error) {
	c.meshes = nil
	c.err = err
}

// Meshes returns the collected meshes in file order.
func (c *Collector) Meshes() []*Mesh {
	return c.meshes
}

// Err returns the error passed to Abort, if any.
func (c *Collector) Err() error {
	return c.err
}

func (c *Collector) partial(m *Mesh, attr string, count int) {
	c.log.Warn("dropping partial vertex attribute",
		zap.String("object", m.ObjectName),
		zap.String("group", m.GroupName),
		zap.String("material", m.MaterialName),
		zap.String("attribute", attr),
		zap.Int("count", count),
		zap.Int("vertices", m.VertexCount()))
}

func (c *Collector) build(instance int, sub *obj.SubMesh) *Mesh {
	names := c.opts.Names
	m := &Mesh{
		Instance:       instance,
		ObjectName:     names.Decode(sub.ObjectName),
		GroupName:      names.Decode(sub.GroupName),
		MaterialName:   names.Decode(sub.MaterialName),
		SmoothingGroup: sub.SmoothingGroup,
		FlatShading:    sub.Flat(),
		Positions:      sub.Positions,
		Bounds:         ComputeBounds(sub.Positions),
	}

	// faces with and without an attribute may share a sub-mesh; a partial
	// array cannot be matched to its vertices and is dropped
	if sub.HasUVs() {
		m.UVs = sub.UVs
	} else if len(sub.UVs) > 0 {
		c.partial(m, "uvs", len(sub.UVs)/obj.UVStride)
	}
	if !sub.HasNormals() && len(sub.Normals) > 0 {
		c.partial(m, "normals", len(sub.Normals)/obj.NormalStride)
	}

	switch {
	case sub.HasNormals():
		m.Normals = sub.Normals
	case c.opts.ComputeNormals:
		m.Normals = ComputeFaceNormals(sub.Positions)
		m.NormalsComputed = true
	}
	return m
}
