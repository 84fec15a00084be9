package scene

import (
	"math"

	"github.com/achilleasa/bvhtrace/types"
)

// The default lower bound for ray parametric distances. It keeps secondary
// rays from re-hitting the surface they were spawned from.
const RayEpsilon = 1e-6

// A ray with a parametric validity interval. Only hits with
// Start <= t <= End are considered valid. The direction does not need to be
// normalized.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3

	Start float64
	End   float64
}

// Create a ray that is valid for t in [RayEpsilon, +Inf].
func NewRay(origin, direction types.Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		Start:     RayEpsilon,
		End:       math.Inf(1),
	}
}

// Get the point at parametric distance t.
func (r Ray) At(t float64) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Check whether t lies inside the ray's validity interval.
func (r Ray) InRange(t float64) bool {
	return t >= r.Start && t <= r.End
}

// Transform ray by an affine matrix. The parametric interval carries over
// unchanged because the direction is not renormalized.
func (r Ray) Transform(m types.Mat4) Ray {
	return Ray{
		Origin:    m.MulPos(r.Origin),
		Direction: m.MulDir(r.Direction),
		Start:     r.Start,
		End:       r.End,
	}
}

// The result of a successful ray-primitive intersection.
type HitRecord struct {
	// Parametric distance along the ray.
	T float64

	// World-space hit point and unit surface normal.
	Point  types.Vec3
	Normal types.Vec3

	// The primitive that was hit.
	Primitive Primitive

	// Surface parameters; only meaningful if HasUV is set.
	UV    types.Vec2
	HasUV bool
}
