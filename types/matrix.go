package types

import (
	"github.com/go-gl/mathgl/mgl32"
)

// A column-major 4x4 matrix.
type Mat4 mgl32.Mat4

// Identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Rotation matrix around an arbitrary axis; angle is in radians.
func Rotate4(angle float32, axis Vec3) Mat4 {
	return Mat4(mgl32.HomogRotate3D(angle, mgl32.Vec3(axis.Normalize())))
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply matrix with a 4 component vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Transform a point (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// Invert the matrix. Singular matrices invert to the zero matrix.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Transpose the matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(mgl32.Mat4(m).Transpose())
}

// Get matrix rows. Device kernels expect row-major matrices.
func (m Mat4) Rows() [4]Vec4 {
	var rows [4]Vec4
	for r := 0; r < 4; r++ {
		rows[r] = Vec4(mgl32.Mat4(m).Row(r))
	}
	return rows
}

// Compare two matrices allowing for a small per-element error.
func (m Mat4) ApproxEqual(m2 Mat4) bool {
	return mgl32.Mat4(m).ApproxEqualThreshold(mgl32.Mat4(m2), 1e-4)
}
