package obj

import "fmt"

// PushFace expands a face record into triangles of the active sub-mesh.
// Quads and larger polygons are fan-triangulated from the first reference:
// [a b c d] becomes (a b c) (a c d).
func (b *Builder) PushFace(format FaceFormat, indices []int) error {
	per := format.IndicesPerVertex()
	if len(indices)%per != 0 {
		return fmt.Errorf("%w: %d indices do not form %s references", ErrMalformedToken, len(indices), format)
	}
	refs := len(indices) / per
	if refs < 3 {
		return fmt.Errorf("%w: face needs at least 3 references, got %d", ErrMalformedToken, refs)
	}

	m := b.target()
	for i := 1; i+1 < refs; i++ {
		for _, r := range [3]int{0, i, i + 1} {
			if err := b.attachReference(m, format, indices[r*per:(r+1)*per]); err != nil {
				return err
			}
		}
	}
	return nil
}

// attachReference copies the attributes of one vertex reference into m.
func (b *Builder) attachReference(m *SubMesh, format FaceFormat, ref []int) error {
	if err := attach(&m.Positions, b.vertices, VertexStride, b.vertexOffset, ref[0], "vertex"); err != nil {
		return err
	}
	switch format.Base() {
	case FaceVertexUVNormal:
		if err := attach(&m.UVs, b.uvs, UVStride, b.uvOffset, ref[1], "uv"); err != nil {
			return err
		}
		return attach(&m.Normals, b.normals, NormalStride, b.normalOffset, ref[2], "normal")
	case FaceVertexUV:
		return attach(&m.UVs, b.uvs, UVStride, b.uvOffset, ref[1], "uv")
	case FaceVertexNormal:
		return attach(&m.Normals, b.normals, NormalStride, b.normalOffset, ref[1], "normal")
	}
	return nil
}

// attach resolves a global OBJ index against a pool and appends stride
// floats to dst. Negative indices count back from the last element pushed.
func attach(dst *[]float32, pool []float32, stride, offset, index int, kind string) error {
	count := len(pool) / stride
	global := index
	if index < 0 {
		global = offset + count + index
	}
	pos := global - offset
	if index == 0 || pos < 0 || pos >= count {
		if count == 0 {
			return fmt.Errorf("%w: %s %d, instance holds no %s data", ErrIndexOutOfRange, kind, index, kind)
		}
		return fmt.Errorf("%w: %s %d, instance holds %d..%d", ErrIndexOutOfRange, kind, index, offset, offset+count-1)
	}
	start := pos * stride
	*dst = append(*dst, pool[start:start+stride]...)
	return nil
}
