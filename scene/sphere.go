package scene

import (
	"math"

	"github.com/achilleasa/bvhtrace/types"
)

// A sphere defined by a local center and radius.
type Sphere struct {
	shape

	Origin types.Vec3
	Radius float64
}

// Create new sphere primitive.
func NewSphere(name string, origin types.Vec3, radius float64, transform types.Mat4) (*Sphere, error) {
	if radius <= 0 {
		return nil, ErrDegenerateShape
	}

	sh, err := newShape(name, transform)
	if err != nil {
		return nil, err
	}

	s := &Sphere{shape: sh, Origin: origin, Radius: radius}
	s.bounds = BoundSphere(transform, origin, radius)
	return s, nil
}

func (s *Sphere) Type() PrimitiveType {
	return SpherePrimitive
}

// Intersect ray with sphere. The nearest root inside the ray interval wins.
func (s *Sphere) Intersect(ray Ray) (HitRecord, bool) {
	local := s.toLocal(ray)

	oc := local.Origin.Sub(s.Origin)
	a := local.Direction.Dot(local.Direction)
	halfB := oc.Dot(local.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 || a == 0 {
		return HitRecord{}, false
	}

	sq := math.Sqrt(disc)
	t := (-halfB - sq) / a
	if !ray.InRange(t) {
		t = (-halfB + sq) / a
		if !ray.InRange(t) {
			return HitRecord{}, false
		}
	}

	n := local.At(t).Sub(s.Origin).Mul(1.0 / s.Radius)
	return HitRecord{
		T:         t,
		Point:     ray.At(t),
		Normal:    s.toWorldNormal(n),
		Primitive: s,
		UV:        sphereUV(n),
		HasUV:     true,
	}, true
}

// Map a unit local normal to spherical coordinates in [0, 1].
func sphereUV(n types.Vec3) types.Vec2 {
	y := math.Max(-1, math.Min(1, n[1]))
	phi := math.Atan2(n[2], n[0])
	return types.Vec2{
		(phi + math.Pi) / (2 * math.Pi),
		math.Acos(y) / math.Pi,
	}
}
