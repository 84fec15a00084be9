package accel

import "github.com/achilleasa/bvhtrace/scene"

// LinearScan tests every primitive for every query. It serves as the
// reference implementation that the BVH is checked against.
type LinearScan struct {
	prims []scene.Primitive
}

func (l *LinearScan) Build(prims []scene.Primitive) error {
	if len(prims) == 0 {
		return ErrNoPrimitives
	}
	l.prims = prims
	return nil
}

func (l *LinearScan) Intersect(ray scene.Ray, mode QueryMode) (scene.HitRecord, bool) {
	var rec scene.HitRecord
	tr := traversal{mode: mode}
	hit := false
	for _, prim := range l.prims {
		if tr.testPrimitive(prim, &ray, &rec) {
			if mode == Any {
				return rec, true
			}
			hit = true
		}
	}
	return rec, hit
}
