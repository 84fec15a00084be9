package scene

import (
	"math"

	"github.com/achilleasa/bvhtrace/types"
)

// Bounds is a world-space AABB together with a representative point that the
// BVH builder uses for ordering primitives.
type Bounds struct {
	Min      types.Vec3
	Max      types.Vec3
	Centroid types.Vec3
}

// Create an inverted bounds value that acts as the identity for Union.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: types.Vec3{inf, inf, inf},
		Max: types.Vec3{-inf, -inf, -inf},
	}
}

// Check min <= max along every axis. Zero-thickness bounds are valid.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Grow bounds to enclose other. The centroid of the result is the center of
// the merged box.
func (b Bounds) Union(other Bounds) Bounds {
	out := Bounds{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
	out.Centroid = out.Min.Add(out.Max).Mul(0.5)
	return out
}

// Check whether other lies entirely inside b.
func (b Bounds) Contains(other Bounds) bool {
	for axis := 0; axis < 3; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the box side lengths.
func (b Bounds) Extent() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box volume.
func (b Bounds) Volume() float64 {
	side := b.Extent()
	return side[0] * side[1] * side[2]
}

// BoundPoints transforms a set of local-space points by m and returns their
// world-space AABB. The centroid is the average of the transformed points and
// not the analytic centroid of the shape. At least one point is required.
func BoundPoints(m types.Mat4, points ...types.Vec3) Bounds {
	b := EmptyBounds()
	var sum types.Vec3
	for _, p := range points {
		wp := m.MulPos(p)
		b.Min = types.MinVec3(b.Min, wp)
		b.Max = types.MaxVec3(b.Max, wp)
		sum = sum.Add(wp)
	}
	if len(points) != 0 {
		b.Centroid = sum.Mul(1.0 / float64(len(points)))
	}
	return b
}

// Bound a local-space box by its 8 transformed corners.
func BoundBox(m types.Mat4, localMin, localMax types.Vec3) Bounds {
	return BoundPoints(m, boxCorners(localMin, localMax)...)
}

// Bound a sphere by the corners of its circumscribed local cube.
func BoundSphere(m types.Mat4, center types.Vec3, radius float64) Bounds {
	r := types.Vec3{radius, radius, radius}
	return BoundBox(m, center.Sub(r), center.Add(r))
}

// Bound a cylinder whose axis is the local z axis by the corners of its
// circumscribed local box.
func BoundCylinder(m types.Mat4, center types.Vec3, radius, height float64) Bounds {
	half := types.Vec3{radius, radius, 0.5 * height}
	return BoundBox(m, center.Sub(half), center.Add(half))
}

// Bound a triangle by its 3 transformed vertices.
func BoundTriangle(m types.Mat4, v0, v1, v2 types.Vec3) Bounds {
	return BoundPoints(m, v0, v1, v2)
}

func boxCorners(min, max types.Vec3) []types.Vec3 {
	corners := make([]types.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		c := min
		if i&1 != 0 {
			c[0] = max[0]
		}
		if i&2 != 0 {
			c[1] = max[1]
		}
		if i&4 != 0 {
			c[2] = max[2]
		}
		corners = append(corners, c)
	}
	return corners
}
