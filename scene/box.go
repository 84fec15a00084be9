package scene

import (
	"math"

	"github.com/achilleasa/bvhtrace/types"
)

// An axis aligned (in local space) box.
type Box struct {
	shape

	Min types.Vec3
	Max types.Vec3
}

// Create new box primitive from its local min and max corners.
func NewBox(name string, min, max types.Vec3, transform types.Mat4) (*Box, error) {
	for axis := 0; axis < 3; axis++ {
		if max[axis] <= min[axis] {
			return nil, ErrDegenerateShape
		}
	}

	sh, err := newShape(name, transform)
	if err != nil {
		return nil, err
	}

	b := &Box{shape: sh, Min: min, Max: max}
	b.bounds = BoundBox(transform, min, max)
	return b, nil
}

func (b *Box) Type() PrimitiveType {
	return BoxPrimitive
}

// Intersect ray with box using the slab method in local space. Rays that start
// inside the box report the exit point.
func (b *Box) Intersect(ray Ray) (HitRecord, bool) {
	local := b.toLocal(ray)

	tNear, tFar := math.Inf(-1), math.Inf(1)
	var nearAxis, farAxis int
	for axis := 0; axis < 3; axis++ {
		invD := 1.0 / local.Direction[axis]
		t0 := (b.Min[axis] - local.Origin[axis]) * invD
		t1 := (b.Max[axis] - local.Origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear, nearAxis = t0, axis
		}
		if t1 < tFar {
			tFar, farAxis = t1, axis
		}
		if tNear > tFar {
			return HitRecord{}, false
		}
	}

	var n types.Vec3
	t := tNear
	if ray.InRange(tNear) {
		n[nearAxis] = -math.Copysign(1, local.Direction[nearAxis])
	} else if ray.InRange(tFar) {
		t = tFar
		n[farAxis] = math.Copysign(1, local.Direction[farAxis])
	} else {
		return HitRecord{}, false
	}

	return HitRecord{
		T:         t,
		Point:     ray.At(t),
		Normal:    b.toWorldNormal(n),
		Primitive: b,
	}, true
}
