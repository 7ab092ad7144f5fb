package obj

import (
	"errors"
	"strings"
	"testing"
)

// newTestBuilder creates a builder holding n vertices at (i, 0, 0) for i in 1..n.
func newTestBuilder(n int) *Builder {
	b := NewBuilder(false)
	for i := 1; i <= n; i++ {
		b.PushVertex(float32(i), 0, 0)
	}
	return b
}

// xs returns the x coordinate of every position in m.
func xs(m *SubMesh) []float32 {
	out := make([]float32, 0, m.VertexCount())
	for i := 0; i < len(m.Positions); i += VertexStride {
		out = append(out, m.Positions[i])
	}
	return out
}

func equalFloats(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuilder_QuadExpansion(t *testing.T) {
	b := newTestBuilder(4)
	if err := b.PushFace(FaceVertexQuad, []int{1, 2, 3, 4}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}

	meshes := b.Meshes()
	if len(meshes) != 1 {
		t.Fatalf("expected 1 sub-mesh, got %d", len(meshes))
	}

	// (a b c) then (a c d)
	want := []float32{1, 2, 3, 1, 3, 4}
	if got := xs(meshes[0]); !equalFloats(got, want) {
		t.Errorf("expected triangle order %v, got %v", want, got)
	}
	if meshes[0].TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", meshes[0].TriangleCount())
	}
}

func TestBuilder_PolygonFan(t *testing.T) {
	b := newTestBuilder(5)
	if err := b.PushFace(FaceVertex, []int{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}

	want := []float32{1, 2, 3, 1, 3, 4, 1, 4, 5}
	if got := xs(b.Meshes()[0]); !equalFloats(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuilder_AttachCounts(t *testing.T) {
	b := newTestBuilder(4)
	faces := []struct {
		format  FaceFormat
		indices []int
	}{
		{FaceVertex, []int{1, 2, 3}},
		{FaceVertexQuad, []int{1, 2, 3, 4}},
		{FaceVertex, []int{2, 3, 4}},
	}
	for _, f := range faces {
		if err := b.PushFace(f.format, f.indices); err != nil {
			t.Fatalf("PushFace failed: %v", err)
		}
	}

	total := 0
	for _, m := range b.Meshes() {
		total += m.VertexCount()
	}
	// 3 + 6 + 3
	if total != 12 {
		t.Errorf("expected 12 written vertices, got %d", total)
	}
}

func TestBuilder_AttributeFormats(t *testing.T) {
	tests := []struct {
		name        string
		format      FaceFormat
		indices     []int
		wantNormals int
		wantUVs     int
	}{
		{"vertex/uv/normal", FaceVertexUVNormal, []int{1, 1, 1, 2, 2, 2, 3, 3, 3}, 9, 6},
		{"vertex/uv", FaceVertexUV, []int{1, 1, 2, 2, 3, 3}, 0, 6},
		{"vertex//normal", FaceVertexNormal, []int{1, 1, 2, 2, 3, 3}, 9, 0},
		{"vertex", FaceVertex, []int{1, 2, 3}, 0, 0},
		{"vertex/uv/normal quad", FaceVertexUVNormalQuad, []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 1, 1}, 18, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(4)
			for i := 0; i < 3; i++ {
				b.PushNormal(0, 0, float32(i+1))
				b.PushUV(float32(i), 0.5)
			}
			if err := b.PushFace(tt.format, tt.indices); err != nil {
				t.Fatalf("PushFace failed: %v", err)
			}

			m := b.Meshes()[0]
			if len(m.Normals) != tt.wantNormals {
				t.Errorf("expected %d normal floats, got %d", tt.wantNormals, len(m.Normals))
			}
			if len(m.UVs) != tt.wantUVs {
				t.Errorf("expected %d uv floats, got %d", tt.wantUVs, len(m.UVs))
			}
			if tt.wantNormals == 0 && m.Normals != nil {
				t.Error("expected nil normals")
			}
			if tt.wantUVs == 0 && m.UVs != nil {
				t.Error("expected nil uvs")
			}
		})
	}
}

func TestBuilder_MixedAttributeFaces(t *testing.T) {
	b := newTestBuilder(3)
	b.PushNormal(0, 0, 1)
	b.PushUV(0, 0)

	if err := b.PushFace(FaceVertexNormal, []int{1, 1, 2, 1, 3, 1}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}
	m := b.Meshes()[0]
	if !m.HasNormals() || m.HasUVs() {
		t.Fatalf("expected normals only, got normals=%v uvs=%v", m.HasNormals(), m.HasUVs())
	}

	if err := b.PushFace(FaceVertexUV, []int{1, 1, 2, 1, 3, 1}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}
	if m.HasNormals() {
		t.Error("expected partial normals to report false")
	}
	if m.HasUVs() {
		t.Error("expected partial uvs to report false")
	}
	if len(m.Normals) != 9 || len(m.UVs) != 6 {
		t.Errorf("expected raw arrays to be kept, got %d normal and %d uv floats", len(m.Normals), len(m.UVs))
	}
}

func TestBuilder_RedundantGroupChange(t *testing.T) {
	b := newTestBuilder(3)
	b.PushGroup("wall")
	if err := b.PushFace(FaceVertex, []int{1, 2, 3}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}
	b.PushGroup("wall")
	if err := b.PushFace(FaceVertex, []int{1, 2, 3}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}

	if b.groupCount != 1 {
		t.Errorf("expected group counter 1, got %d", b.groupCount)
	}
	if len(b.order) != 1 {
		t.Errorf("expected 1 sub-mesh, got %d", len(b.order))
	}
}

func TestBuilder_SubMeshKeys(t *testing.T) {
	b := newTestBuilder(3)
	push := func() {
		t.Helper()
		if err := b.PushFace(FaceVertex, []int{1, 2, 3}); err != nil {
			t.Fatalf("PushFace failed: %v", err)
		}
	}

	b.PushMaterial("stone")
	push()
	b.PushMaterial("wood")
	push()
	b.PushMaterial("stone")
	push()

	meshes := b.Meshes()
	if len(meshes) != 2 {
		t.Fatalf("expected 2 sub-meshes, got %d", len(meshes))
	}
	if meshes[0].MaterialName != "stone" || meshes[1].MaterialName != "wood" {
		t.Errorf("expected first-appearance order stone, wood; got %s, %s",
			meshes[0].MaterialName, meshes[1].MaterialName)
	}
	if meshes[0].TriangleCount() != 2 {
		t.Errorf("expected stone to hold 2 triangles, got %d", meshes[0].TriangleCount())
	}
	if b.materialCount != 3 {
		t.Errorf("expected material counter 3, got %d", b.materialCount)
	}
}

func TestBuilder_SmoothingBuckets(t *testing.T) {
	tests := []struct {
		name       string
		perGroup   bool
		wantMeshes int
	}{
		{"collapsed", false, 2},
		{"per group", true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.perGroup)
			for i := 1; i <= 3; i++ {
				b.PushVertex(float32(i), 0, 0)
			}
			for _, token := range []string{"1", "2", "off"} {
				if err := b.PushSmoothingGroup(token); err != nil {
					t.Fatalf("PushSmoothingGroup(%q) failed: %v", token, err)
				}
				if err := b.PushFace(FaceVertex, []int{1, 2, 3}); err != nil {
					t.Fatalf("PushFace failed: %v", err)
				}
			}

			meshes := b.Meshes()
			if len(meshes) != tt.wantMeshes {
				t.Fatalf("expected %d sub-meshes, got %d", tt.wantMeshes, len(meshes))
			}
			last := meshes[len(meshes)-1]
			if !last.Flat() {
				t.Errorf("expected last sub-mesh to be flat, got smoothing group %d", last.SmoothingGroup)
			}
		})
	}
}

func TestBuilder_SmoothingTokens(t *testing.T) {
	tests := []struct {
		token   string
		want    int
		wantErr bool
	}{
		{"off", 0, false},
		{"0", 0, false},
		{"on", 1, false},
		{"4", 4, false},
		{"smooth", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			b := NewBuilder(true)
			err := b.PushSmoothingGroup(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedToken) {
					t.Errorf("expected ErrMalformedToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.smoothingGroup != tt.want {
				t.Errorf("expected smoothing group %d, got %d", tt.want, b.smoothingGroup)
			}
		})
	}
}

func TestBuilder_NextOffsets(t *testing.T) {
	b := newTestBuilder(4)
	b.PushNormal(0, 1, 0)
	b.PushUV(0, 0)
	b.PushUV(1, 0)
	b.PushGroup("kept")

	explicit := b.next(false)
	v, n, uv := explicit.Offsets()
	if v != 5 || n != 2 || uv != 3 {
		t.Errorf("expected offsets 5/2/3, got %d/%d/%d", v, n, uv)
	}
	if explicit.group != DefaultName {
		t.Errorf("expected explicit boundary to reset group, got %q", explicit.group)
	}
	if len(explicit.vertices) != 0 {
		t.Error("expected empty vertex pool in next instance")
	}

	implicit := b.next(true)
	if implicit.group != "kept" {
		t.Errorf("expected implicit boundary to keep group, got %q", implicit.group)
	}

	// global index 5 is the first vertex of the next instance
	implicit.PushVertex(9, 0, 0)
	implicit.PushVertex(10, 0, 0)
	implicit.PushVertex(11, 0, 0)
	if err := implicit.PushFace(FaceVertex, []int{5, 6, 7}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}
	if got := xs(implicit.Meshes()[0]); !equalFloats(got, []float32{9, 10, 11}) {
		t.Errorf("expected [9 10 11], got %v", got)
	}
}

func TestBuilder_IndexOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		format  FaceFormat
		indices []int
	}{
		{"past end", FaceVertex, []int{1, 2, 4}},
		{"zero", FaceVertex, []int{0, 1, 2}},
		{"relative past start", FaceVertex, []int{-4, -2, -1}},
		{"missing normals", FaceVertexNormal, []int{1, 1, 2, 1, 3, 1}},
		{"missing uvs", FaceVertexUV, []int{1, 1, 2, 1, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(3)
			err := b.PushFace(tt.format, tt.indices)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}

func TestBuilder_IndexErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		vertices int
		format   FaceFormat
		indices  []int
		want     string
	}{
		{"empty vertex pool", 0, FaceVertex, []int{1, 2, 3}, "vertex 1, instance holds no vertex data"},
		{"empty normal pool", 3, FaceVertexNormal, []int{1, 1, 2, 1, 3, 1}, "normal 1, instance holds no normal data"},
		{"past end", 3, FaceVertex, []int{1, 2, 9}, "vertex 9, instance holds 1..3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(tt.vertices)
			err := b.PushFace(tt.format, tt.indices)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected message containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestBuilder_FlushedInstanceIndex(t *testing.T) {
	b := newTestBuilder(4).next(false)
	b.PushVertex(0, 0, 0)
	b.PushVertex(1, 0, 0)
	b.PushVertex(2, 0, 0)

	err := b.PushFace(FaceVertex, []int{1, 5, 6})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange for a flushed vertex, got %v", err)
	}
}

func TestBuilder_RelativeIndices(t *testing.T) {
	b := newTestBuilder(5)
	if err := b.PushFace(FaceVertex, []int{-3, -2, -1}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}
	if got := xs(b.Meshes()[0]); !equalFloats(got, []float32{3, 4, 5}) {
		t.Errorf("expected [3 4 5], got %v", got)
	}
}

func TestBuilder_TooFewReferences(t *testing.T) {
	b := newTestBuilder(3)
	err := b.PushFace(FaceVertex, []int{1, 2})
	if !errors.Is(err, ErrMalformedToken) {
		t.Errorf("expected ErrMalformedToken, got %v", err)
	}
}

func TestBuilder_Report(t *testing.T) {
	b := newTestBuilder(4)
	b.PushNormal(0, 0, 1)
	b.PushUV(0, 0)
	b.PushComment(" hi")
	b.PushMtllib("scene.mtl")
	b.PushObject("crate")
	b.PushGroup("lid")
	b.PushMaterial("wood")
	if err := b.PushSmoothingGroup("1"); err != nil {
		t.Fatalf("PushSmoothingGroup failed: %v", err)
	}
	if err := b.PushFace(FaceVertexQuad, []int{1, 2, 3, 4}); err != nil {
		t.Fatalf("PushFace failed: %v", err)
	}

	r := b.Report()
	if r.ObjectName != "crate" || r.Mtllib != "scene.mtl" {
		t.Errorf("unexpected names: %q %q", r.ObjectName, r.Mtllib)
	}
	if r.Vertices != 4 || r.Normals != 1 || r.UVs != 1 {
		t.Errorf("unexpected pool counts: %d/%d/%d", r.Vertices, r.Normals, r.UVs)
	}
	if r.GroupChanges != 1 || r.MaterialChanges != 1 || r.SmoothingGroupChanges != 1 {
		t.Errorf("unexpected change counters: %d/%d/%d", r.GroupChanges, r.MaterialChanges, r.SmoothingGroupChanges)
	}
	if r.Comments != 1 || r.SubMeshes != 1 || r.Triangles != 2 {
		t.Errorf("unexpected totals: comments=%d subMeshes=%d triangles=%d", r.Comments, r.SubMeshes, r.Triangles)
	}
}
