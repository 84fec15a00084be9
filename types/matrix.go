package types

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 is a column-major affine transformation matrix.
type Mat4 mgl64.Mat4

// Create identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl64.Ident4())
}

// Create a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4(mgl64.Translate3D(v[0], v[1], v[2]))
}

// Create a non-uniform scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4(mgl64.Scale3D(v[0], v[1], v[2]))
}

// Create a rotation matrix from an axis and an angle in radians.
func Rotate(axis Vec3, angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3D(angle, mgl64.Vec3(axis.Normalize())))
}

// Compose two transformations; m2 is applied first.
func (m Mat4) Mul(m2 Mat4) Mat4 {
	return Mat4(mgl64.Mat4(m).Mul4(mgl64.Mat4(m2)))
}

// Transform a point.
func (m Mat4) MulPos(v Vec3) Vec3 {
	return Vec3(mgl64.TransformCoordinate(mgl64.Vec3(v), mgl64.Mat4(m)))
}

// Transform a direction; translation is ignored.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3(mgl64.TransformNormal(mgl64.Vec3(v), mgl64.Mat4(m)))
}

// Transpose matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(mgl64.Mat4(m).Transpose())
}

// Invert matrix. The second result is false if the matrix is singular.
//
// Singularity is judged relative to the magnitude of the basis vectors so
// uniformly tiny (or huge) scales remain invertible.
func (m Mat4) Inverse() (Mat4, bool) {
	mm := mgl64.Mat4(m)
	if mm.Row(3) != (mgl64.Vec4{0, 0, 0, 1}) {
		return m.projectiveInverse()
	}

	// The rows of the inverse linear part are the pairwise cross products
	// of its columns divided by the determinant.
	c0, c1, c2 := Vec3(mm.Col(0).Vec3()), Vec3(mm.Col(1).Vec3()), Vec3(mm.Col(2).Vec3())
	r0, r1, r2 := c1.Cross(c2), c2.Cross(c0), c0.Cross(c1)
	det := c0.Dot(r0)
	scale := c0.Len() * c1.Len() * c2.Len()
	if scale == 0 || math.IsNaN(det) || math.Abs(det) <= floatCmpEpsilon*scale {
		return Mat4{}, false
	}

	r0, r1, r2 = r0.Mul(1/det), r1.Mul(1/det), r2.Mul(1/det)
	t := Vec3(mm.Col(3).Vec3())
	inv := Mat4(mgl64.Mat4{
		r0[0], r1[0], r2[0], 0,
		r0[1], r1[1], r2[1], 0,
		r0[2], r1[2], r2[2], 0,
		-r0.Dot(t), -r1.Dot(t), -r2.Dot(t), 1,
	})
	if !inv.isFinite() {
		return Mat4{}, false
	}
	return inv, true
}

func (m Mat4) projectiveInverse() (Mat4, bool) {
	mm := mgl64.Mat4(m)
	if det := mm.Det(); det == 0 || math.IsNaN(det) {
		return Mat4{}, false
	}

	// Inv yields the zero matrix when the determinant is vanishingly small
	inv := Mat4(mm.Inv())
	if inv == (Mat4{}) || !inv.isFinite() {
		return Mat4{}, false
	}
	return inv, true
}

func (m Mat4) isFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Create a right-handed view matrix for an eye looking at center.
func LookAt(eye, center, up Vec3) Mat4 {
	return Mat4(mgl64.LookAtV(mgl64.Vec3(eye), mgl64.Vec3(center), mgl64.Vec3(up)))
}

// Create a perspective projection matrix. The vertical field of view is
// specified in degrees.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	return Mat4(mgl64.Perspective(mgl64.DegToRad(fovy), aspect, near, far))
}
