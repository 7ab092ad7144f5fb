package obj

import (
	"fmt"
	"strconv"
)

// meshKey identifies a sub-mesh within one instance.
type meshKey struct {
	object    string
	group     string
	material  string
	smoothing int
}

// Builder accumulates the raw geometry of one instance: the coordinate pools,
// the active grouping state and the sub-meshes faces are expanded into.
type Builder struct {
	perSmoothingGroup bool

	// 1-based global index of the first element in each pool
	vertexOffset int
	normalOffset int
	uvOffset     int

	vertices []float32
	normals  []float32
	uvs      []float32
	comments []string

	mtllib         string
	object         string
	group          string
	material       string
	smoothingGroup int

	groupCount          int
	materialCount       int
	smoothingGroupCount int

	facesSeen bool

	meshes map[meshKey]*SubMesh
	order  []*SubMesh
	active *SubMesh
}

// NewBuilder creates the builder for the first instance of a file.
func NewBuilder(perSmoothingGroup bool) *Builder {
	return &Builder{
		perSmoothingGroup: perSmoothingGroup,
		vertexOffset:      1,
		normalOffset:      1,
		uvOffset:          1,
		object:            DefaultName,
		group:             DefaultName,
		material:          DefaultName,
		meshes:            make(map[meshKey]*SubMesh),
	}
}

// next creates the builder for the following instance. Offsets continue the
// global numbering; pools and sub-meshes start empty. An explicit "o" starts
// from the defaults. An implicit boundary keeps object, group, material and
// smoothing group: headerless exports repeat vertex blocks without restating
// usemtl or s, and dropping them would move those faces to material "none".
func (b *Builder) next(implicit bool) *Builder {
	n := NewBuilder(b.perSmoothingGroup)
	n.vertexOffset = b.vertexOffset + len(b.vertices)/VertexStride
	n.normalOffset = b.normalOffset + len(b.normals)/NormalStride
	n.uvOffset = b.uvOffset + len(b.uvs)/UVStride
	n.mtllib = b.mtllib
	if implicit {
		n.object = b.object
		n.group = b.group
		n.material = b.material
		n.smoothingGroup = b.smoothingGroup
	}
	return n
}

// Offsets returns the global index of the first vertex, normal and uv held
// by this instance.
func (b *Builder) Offsets() (vertex, normal, uv int) {
	return b.vertexOffset, b.normalOffset, b.uvOffset
}

// PushVertex appends a vertex position to the pool.
func (b *Builder) PushVertex(x, y, z float32) {
	b.vertices = append(b.vertices, x, y, z)
}

// PushNormal appends a normal to the pool.
func (b *Builder) PushNormal(x, y, z float32) {
	b.normals = append(b.normals, x, y, z)
}

// PushUV appends a texture coordinate to the pool.
func (b *Builder) PushUV(u, v float32) {
	b.uvs = append(b.uvs, u, v)
}

// PushComment records a comment line.
func (b *Builder) PushComment(text string) {
	b.comments = append(b.comments, text)
}

// PushMtllib records the material library name.
func (b *Builder) PushMtllib(name string) {
	b.mtllib = name
}

// PushObject sets the active object name.
func (b *Builder) PushObject(name string) {
	if b.object == name {
		return
	}
	b.object = name
	b.active = nil
}

// PushGroup sets the active group name.
func (b *Builder) PushGroup(name string) {
	if b.group == name {
		return
	}
	b.group = name
	b.groupCount++
	b.active = nil
}

// PushMaterial sets the active material name.
func (b *Builder) PushMaterial(name string) {
	if b.material == name {
		return
	}
	b.material = name
	b.materialCount++
	b.active = nil
}

// PushSmoothingGroup sets the active smoothing group from an "s" token.
// "off" selects group 0.
func (b *Builder) PushSmoothingGroup(token string) error {
	var id int
	switch token {
	case "off", "":
		id = 0
	case "on":
		id = 1
	default:
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %q is not a smoothing group", ErrMalformedToken, token)
		}
		id = n
	}
	if b.smoothingGroup == id {
		return nil
	}
	b.smoothingGroup = id
	b.smoothingGroupCount++
	b.active = nil
	return nil
}

// key builds the sub-mesh key for the current state. Without per-group
// descriptors all non-zero smoothing groups collapse into bucket 1.
func (b *Builder) key() meshKey {
	smoothing := b.smoothingGroup
	if !b.perSmoothingGroup && smoothing != 0 {
		smoothing = 1
	}
	return meshKey{
		object:    b.object,
		group:     b.group,
		material:  b.material,
		smoothing: smoothing,
	}
}

// target returns the sub-mesh for the current state, creating it on first use.
func (b *Builder) target() *SubMesh {
	if b.active != nil {
		return b.active
	}
	k := b.key()
	m, ok := b.meshes[k]
	if !ok {
		m = &SubMesh{
			ObjectName:     b.object,
			GroupName:      b.group,
			MaterialName:   b.material,
			SmoothingGroup: b.smoothingGroup,
		}
		b.meshes[k] = m
		b.order = append(b.order, m)
	}
	b.active = m
	return m
}

// Meshes returns the sub-meshes that received vertices, in order of first
// appearance.
func (b *Builder) Meshes() []*SubMesh {
	out := make([]*SubMesh, 0, len(b.order))
	for _, m := range b.order {
		if m.VertexCount() > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Report summarizes the instance.
func (b *Builder) Report() InstanceReport {
	r := InstanceReport{
		ObjectName:            b.object,
		Mtllib:                b.mtllib,
		Vertices:              len(b.vertices) / VertexStride,
		Normals:               len(b.normals) / NormalStride,
		UVs:                   len(b.uvs) / UVStride,
		GroupChanges:          b.groupCount,
		MaterialChanges:       b.materialCount,
		SmoothingGroupChanges: b.smoothingGroupCount,
		Comments:              len(b.comments),
	}
	for _, m := range b.order {
		if m.VertexCount() > 0 {
			r.SubMeshes++
			r.Triangles += m.TriangleCount()
		}
	}
	return r
}
