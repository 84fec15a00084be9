package scene

import (
	"errors"

	"github.com/achilleasa/bvhtrace/types"
)

var (
	ErrSingularTransform = errors.New("scene: primitive transform is not invertible")
	ErrDegenerateShape   = errors.New("scene: primitive dimensions must be positive")
)

// The Primitive interface is implemented by all scene shapes that can be
// partitioned by a BVH and tested against rays.
type Primitive interface {
	// World-space conservative extents as a [min, max] pair.
	BBox() [2]types.Vec3

	// The point used for ordering primitives while partitioning.
	Center() types.Vec3

	// Intersect the ray with the primitive. The ray is passed by value so
	// implementations can not narrow the caller's interval. Only hits inside
	// [ray.Start, ray.End] are reported.
	Intersect(ray Ray) (HitRecord, bool)
}

type PrimitiveType uint32

const (
	SpherePrimitive PrimitiveType = iota
	BoxPrimitive
	CylinderPrimitive
	TrianglePrimitive
)

func (t PrimitiveType) String() string {
	switch t {
	case SpherePrimitive:
		return "sphere"
	case BoxPrimitive:
		return "box"
	case CylinderPrimitive:
		return "cylinder"
	case TrianglePrimitive:
		return "triangle"
	}
	return "unknown"
}

// State shared by all transformed shapes. Shapes are described in local space
// and positioned in the world through an affine transform.
type shape struct {
	Name string

	// Local to world transform.
	Transform types.Mat4

	inverse   types.Mat4
	normalMat types.Mat4
	bounds    Bounds
}

func newShape(name string, transform types.Mat4) (shape, error) {
	inv, ok := transform.Inverse()
	if !ok {
		return shape{}, ErrSingularTransform
	}

	return shape{
		Name:      name,
		Transform: transform,
		inverse:   inv,
		normalMat: inv.Transpose(),
	}, nil
}

// Get the world-space AABB as a [min, max] pair.
func (s *shape) BBox() [2]types.Vec3 {
	return [2]types.Vec3{s.bounds.Min, s.bounds.Max}
}

// Get the partitioning centroid.
func (s *shape) Center() types.Vec3 {
	return s.bounds.Centroid
}

// Get the full bounds record.
func (s *shape) Bounds() Bounds {
	return s.bounds
}

// Map a world-space ray to the shape's local space.
func (s *shape) toLocal(ray Ray) Ray {
	return ray.Transform(s.inverse)
}

// Map a local-space normal to a unit world-space normal.
func (s *shape) toWorldNormal(n types.Vec3) types.Vec3 {
	return s.normalMat.MulDir(n).Normalize()
}
