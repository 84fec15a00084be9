package accel

import (
	"strings"

	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
)

// QueryMode selects between nearest-hit and any-hit traversal.
type QueryMode uint8

const (
	// Find the intersection with the smallest t.
	Nearest QueryMode = iota

	// Stop at the first intersection found (occlusion queries).
	Any
)

func (m QueryMode) String() string {
	if m == Any {
		return "any"
	}
	return "nearest"
}

// Look up a query mode by name ("nearest" or "any").
func ParseQueryMode(name string) (QueryMode, error) {
	switch strings.ToLower(name) {
	case "", "nearest":
		return Nearest, nil
	case "any":
		return Any, nil
	}
	return Nearest, ErrUnknownQueryMode
}

// Intersect ray with an AABB using the slab method and return the parametric
// entry and exit distances clipped to [ray.Start, ray.End].
//
// Zero direction components are not special-cased: the division yields a
// signed infinity which keeps the interval test correct. A ray lying exactly
// on a slab plane produces NaN distances which fail every comparison and
// leave the interval untouched, so the box is conservatively reported as hit.
func hitBox(min, max types.Vec3, ray *scene.Ray) (tNear, tFar float64, ok bool) {
	tNear, tFar = ray.Start, ray.End
	for axis := 0; axis < 3; axis++ {
		invD := 1.0 / ray.Direction[axis]
		t0 := (min[axis] - ray.Origin[axis]) * invD
		t1 := (max[axis] - ray.Origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return tNear, tFar, false
		}
	}
	return tNear, tFar, true
}

// BoxEntryExit reports the parametric interval over which ray overlaps the
// box [min, max], clipped to the ray's validity interval.
func BoxEntryExit(min, max types.Vec3, ray scene.Ray) (tNear, tFar float64, ok bool) {
	return hitBox(min, max, &ray)
}

// Per query state.
type traversal struct {
	prims []scene.Primitive
	mode  QueryMode

	// Set once a hit has been recorded.
	found bool

	visited uint64
	culled  uint64
}

// Run query against the tree rooted at root. The ray is a private copy whose
// End is narrowed as closer hits are found.
func (tr *traversal) run(root *Node, ray *scene.Ray, rec *scene.HitRecord) bool {
	if _, _, ok := hitBox(root.Min, root.Max, ray); !ok {
		tr.culled++
		return false
	}
	return tr.visit(root, ray, rec)
}

// Visit a node whose box is already known to overlap the ray.
func (tr *traversal) visit(node *Node, ray *scene.Ray, rec *scene.HitRecord) bool {
	tr.visited++

	if node.IsLeaf() {
		return tr.visitLeaf(node, ray, rec)
	}

	// Order children by box entry distance; the nearer one is visited first
	// so its hits can prune the other.
	first, second := node.Left, node.Right
	tFirst, _, okFirst := hitBox(first.Min, first.Max, ray)
	tSecond, _, okSecond := hitBox(second.Min, second.Max, ray)
	if okSecond && (!okFirst || tSecond < tFirst) {
		first, second = second, first
		tFirst, tSecond = tSecond, tFirst
		okFirst, okSecond = okSecond, okFirst
	}

	hit := false
	if okFirst {
		if tr.visit(first, ray, rec) {
			if tr.mode == Any {
				return true
			}
			hit = true
		}
	} else {
		tr.culled++
	}

	// A hit in the first child may have moved ray.End in front of the
	// second child's box.
	if okSecond && tSecond <= ray.End {
		if tr.visit(second, ray, rec) {
			hit = true
		}
	} else {
		tr.culled++
	}

	return hit
}

// Test every primitive in the leaf range.
func (tr *traversal) visitLeaf(node *Node, ray *scene.Ray, rec *scene.HitRecord) bool {
	hit := false
	for i := node.Start; i < node.End; i++ {
		if tr.testPrimitive(tr.prims[i], ray, rec) {
			if tr.mode == Any {
				return true
			}
			hit = true
		}
	}
	return hit
}

// Intersect a single primitive and record the hit if it improves on the
// current best. In nearest mode the ray interval is narrowed to the hit.
func (tr *traversal) testPrimitive(prim scene.Primitive, ray *scene.Ray, rec *scene.HitRecord) bool {
	h, ok := prim.Intersect(*ray)
	if !ok || !ray.InRange(h.T) {
		return false
	}
	if tr.found && h.T >= ray.End {
		return false
	}

	*rec = h
	tr.found = true
	if tr.mode == Nearest {
		ray.End = h.T
	}
	return true
}
