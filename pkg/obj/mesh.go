package obj

// SubMesh holds the triangle data sharing one object, group, material and
// smoothing group within an instance. Arrays are non-indexed: every three
// positions form a triangle.
type SubMesh struct {
	ObjectName     string
	GroupName      string
	MaterialName   string
	SmoothingGroup int

	Positions []float32 // stride 3
	Normals   []float32 // stride 3, nil when the faces carry no normals
	UVs       []float32 // stride 2, nil when the faces carry no uvs
}

// VertexCount returns the number of vertices written.
func (m *SubMesh) VertexCount() int {
	return len(m.Positions) / VertexStride
}

// TriangleCount returns the number of triangles written.
func (m *SubMesh) TriangleCount() int {
	return m.VertexCount() / 3
}

// HasNormals reports whether every vertex got a normal from the file. A
// sub-mesh mixing "f v//vn" and "f v" faces has a partial Normals array and
// reports false.
func (m *SubMesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals)/NormalStride == m.VertexCount()
}

// HasUVs reports whether every vertex got a texture coordinate from the file.
func (m *SubMesh) HasUVs() bool {
	return len(m.UVs) > 0 && len(m.UVs)/UVStride == m.VertexCount()
}

// Flat reports whether the sub-mesh belongs to smoothing group 0.
func (m *SubMesh) Flat() bool {
	return m.SmoothingGroup == 0
}

// MeshSink receives the sub-meshes of every completed instance, in file order.
type MeshSink interface {
	BuildMeshes(instance int, meshes []*SubMesh) error
}

// Aborter is implemented by sinks that want to know when a parse that
// already streamed instances to them fails.
type Aborter interface {
	Abort(err error)
}

// InstanceReport summarizes one instance.
type InstanceReport struct {
	Index                 int
	ObjectName            string
	Mtllib                string
	Vertices              int
	Normals               int
	UVs                   int
	GroupChanges          int
	MaterialChanges       int
	SmoothingGroupChanges int
	Comments              int
	SubMeshes             int
	Triangles             int
}

// Report summarizes a parse.
type Report struct {
	Instances []InstanceReport
	Lines     int
	Bytes     int64
	Skipped   map[string]int // unsupported record keyword -> line count
}

// SubMeshCount returns the number of sub-meshes across all instances.
func (r *Report) SubMeshCount() int {
	n := 0
	for _, in := range r.Instances {
		n += in.SubMeshes
	}
	return n
}

// TriangleCount returns the number of triangles across all instances.
func (r *Report) TriangleCount() int {
	n := 0
	for _, in := range r.Instances {
		n += in.Triangles
	}
	return n
}
