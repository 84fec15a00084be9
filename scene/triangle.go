package scene

import (
	"math"

	"github.com/achilleasa/bvhtrace/types"
)

// Determinants below this threshold are treated as rays parallel to the
// triangle plane.
const triangleParallelEpsilon = 1e-12

// A single triangle. Vertices are stored in world space; the transform is
// applied once at construction.
type Triangle struct {
	shape

	Vertices [3]types.Vec3
	UV       [3]types.Vec2
	HasUV    bool

	normal types.Vec3
}

// Create new triangle primitive from local-space vertices.
func NewTriangle(name string, vertices [3]types.Vec3, transform types.Mat4) (*Triangle, error) {
	sh, err := newShape(name, transform)
	if err != nil {
		return nil, err
	}

	tri := &Triangle{shape: sh}
	for i, v := range vertices {
		tri.Vertices[i] = transform.MulPos(v)
	}
	// Zero area triangles have no plane to intersect
	cross := tri.Vertices[1].Sub(tri.Vertices[0]).Cross(tri.Vertices[2].Sub(tri.Vertices[0]))
	if cross.Len() < triangleParallelEpsilon {
		return nil, ErrDegenerateShape
	}
	tri.normal = cross.Normalize()
	tri.bounds = BoundTriangle(transform, vertices[0], vertices[1], vertices[2])
	return tri, nil
}

// Create new triangle primitive with per-vertex surface parameters.
func NewTexturedTriangle(name string, vertices [3]types.Vec3, uv [3]types.Vec2, transform types.Mat4) (*Triangle, error) {
	tri, err := NewTriangle(name, vertices, transform)
	if err != nil {
		return nil, err
	}
	tri.UV = uv
	tri.HasUV = true
	return tri, nil
}

func (tri *Triangle) Type() PrimitiveType {
	return TrianglePrimitive
}

// Intersect ray with triangle (Möller–Trumbore).
func (tri *Triangle) Intersect(ray Ray) (HitRecord, bool) {
	e1 := tri.Vertices[1].Sub(tri.Vertices[0])
	e2 := tri.Vertices[2].Sub(tri.Vertices[0])

	p := ray.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < triangleParallelEpsilon {
		return HitRecord{}, false
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(tri.Vertices[0])
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return HitRecord{}, false
	}

	q := s.Cross(e1)
	v := ray.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return HitRecord{}, false
	}

	t := e2.Dot(q) * invDet
	if !ray.InRange(t) {
		return HitRecord{}, false
	}

	rec := HitRecord{
		T:         t,
		Point:     ray.At(t),
		Normal:    tri.normal,
		Primitive: tri,
	}
	if tri.HasUV {
		rec.UV = tri.UV[0].Mul(1 - u - v).Add(tri.UV[1].Mul(u)).Add(tri.UV[2].Mul(v))
		rec.HasUV = true
	}
	return rec, true
}
