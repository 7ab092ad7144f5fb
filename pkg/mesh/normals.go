package mesh

import "github.com/go-gl/mathgl/mgl32"

// vec3At reads the i-th vector of a stride-3 array.
func vec3At(a []float32, i int) mgl32.Vec3 {
	return mgl32.Vec3{a[i*3], a[i*3+1], a[i*3+2]}
}

// ComputeFaceNormals returns one normal per vertex of a non-indexed triangle
// list. All three vertices of a triangle share its face normal; degenerate
// triangles get a zero normal.
func ComputeFaceNormals(positions []float32) []float32 {
	normals := make([]float32, len(positions))
	triangles := len(positions) / 9
	for t := 0; t < triangles; t++ {
		v0 := vec3At(positions, t*3)
		v1 := vec3At(positions, t*3+1)
		v2 := vec3At(positions, t*3+2)

		n := v1.Sub(v0).Cross(v2.Sub(v0))
		if l := n.Len(); l > 1e-12 {
			n = n.Mul(1 / l)
		} else {
			n = mgl32.Vec3{}
		}

		for k := 0; k < 3; k++ {
			copy(normals[(t*3+k)*3:], n[:])
		}
	}
	return normals
}

// ComputeBounds returns the bounding box of a stride-3 position array.
func ComputeBounds(positions []float32) Bounds {
	count := len(positions) / 3
	if count == 0 {
		return Bounds{}
	}

	b := Bounds{Min: vec3At(positions, 0), Max: vec3At(positions, 0)}
	for i := 1; i < count; i++ {
		p := vec3At(positions, i)
		for axis := 0; axis < 3; axis++ {
			if p[axis] < b.Min[axis] {
				b.Min[axis] = p[axis]
			}
			if p[axis] > b.Max[axis] {
				b.Max[axis] = p[axis]
			}
		}
	}
	return b
}
