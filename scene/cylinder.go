package scene

import (
	"math"

	"github.com/achilleasa/bvhtrace/types"
)

// A capped cylinder whose axis runs along the local z axis through Origin.
type Cylinder struct {
	shape

	Origin types.Vec3
	Radius float64
	Height float64
}

// Create new cylinder primitive.
func NewCylinder(name string, origin types.Vec3, radius, height float64, transform types.Mat4) (*Cylinder, error) {
	if radius <= 0 || height <= 0 {
		return nil, ErrDegenerateShape
	}

	sh, err := newShape(name, transform)
	if err != nil {
		return nil, err
	}

	c := &Cylinder{shape: sh, Origin: origin, Radius: radius, Height: height}
	c.bounds = BoundCylinder(transform, origin, radius, height)
	return c, nil
}

func (c *Cylinder) Type() PrimitiveType {
	return CylinderPrimitive
}

// Intersect ray with the cylinder side and both caps and keep the closest
// hit inside the ray interval.
func (c *Cylinder) Intersect(ray Ray) (HitRecord, bool) {
	local := c.toLocal(ray)
	o := local.Origin.Sub(c.Origin)
	d := local.Direction
	halfH := 0.5 * c.Height
	r2 := c.Radius * c.Radius

	bestT := math.Inf(1)
	var n types.Vec3

	// Side
	a := d[0]*d[0] + d[1]*d[1]
	if a > 0 {
		halfB := o[0]*d[0] + o[1]*d[1]
		cc := o[0]*o[0] + o[1]*o[1] - r2
		if disc := halfB*halfB - a*cc; disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range [2]float64{(-halfB - sq) / a, (-halfB + sq) / a} {
				if !ray.InRange(t) || t >= bestT {
					continue
				}
				if z := o[2] + t*d[2]; z < -halfH || z > halfH {
					continue
				}
				bestT = t
				n = types.Vec3{o[0] + t*d[0], o[1] + t*d[1], 0}
				break
			}
		}
	}

	// Caps
	if d[2] != 0 {
		for _, capZ := range [2]float64{-halfH, halfH} {
			t := (capZ - o[2]) / d[2]
			if !ray.InRange(t) || t >= bestT {
				continue
			}
			x, y := o[0]+t*d[0], o[1]+t*d[1]
			if x*x+y*y > r2 {
				continue
			}
			bestT = t
			n = types.Vec3{0, 0, math.Copysign(1, capZ)}
		}
	}

	if math.IsInf(bestT, 1) {
		return HitRecord{}, false
	}

	return HitRecord{
		T:         bestT,
		Point:     ray.At(bestT),
		Normal:    c.toWorldNormal(n),
		Primitive: c,
	}, true
}
