package accel

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
)

// A primitive with a fixed bbox that reports a hit at a fixed t.
type mockPrim struct {
	min, max types.Vec3

	// Negative values never hit.
	hitT float64
}

func (m *mockPrim) BBox() [2]types.Vec3 {
	return [2]types.Vec3{m.min, m.max}
}

func (m *mockPrim) Center() types.Vec3 {
	return m.min.Add(m.max).Mul(0.5)
}

func (m *mockPrim) Intersect(ray scene.Ray) (scene.HitRecord, bool) {
	if m.hitT < 0 || !ray.InRange(m.hitT) {
		return scene.HitRecord{}, false
	}
	return scene.HitRecord{T: m.hitT, Point: ray.At(m.hitT), Primitive: m}, true
}

// Create n unit boxes laid out along the x axis.
func mockRow(n int) []scene.Primitive {
	prims := make([]scene.Primitive, n)
	for i := range prims {
		x := float64(i)
		prims[i] = &mockPrim{min: types.XYZ(x, 0, 0), max: types.XYZ(x+1, 1, 1), hitT: -1}
	}
	return prims
}

func mustBuild(t testing.TB, opts Options, prims []scene.Primitive) *Bvh {
	t.Helper()
	b, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err = b.Build(prims); err != nil {
		t.Fatal(err)
	}
	return b
}

func randomScene(t testing.TB, seed int64, n int) []scene.Primitive {
	t.Helper()
	prims, err := scene.RandomScene(rand.New(rand.NewSource(seed)), n, 10)
	if err != nil {
		t.Fatal(err)
	}
	return prims
}

// Generate rays that start outside or inside the scene and aim at random
// points inside it. Every other ray gets a random finite interval.
func randomRays(seed int64, n int) []scene.Ray {
	rng := rand.New(rand.NewSource(seed))
	vec := func(extent float64) types.Vec3 {
		return types.XYZ(
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
		)
	}

	rays := make([]scene.Ray, n)
	for i := range rays {
		origin := vec(15)
		target := vec(10)
		if i%3 == 2 {
			// Axis-parallel ray: copy the target coordinates for one or two
			// axes so the matching direction components are exactly zero.
			flat := 1 + rng.Intn(2)
			for _, axis := range rng.Perm(3)[:flat] {
				origin[axis] = target[axis]
			}
		}
		rays[i] = scene.NewRay(origin, target.Sub(origin))
		if i%2 == 1 {
			rays[i].Start = rng.Float64() * 0.5
			rays[i].End = rays[i].Start + rng.Float64()
		}
	}
	return rays
}

func clonePrims(prims []scene.Primitive) []scene.Primitive {
	out := make([]scene.Primitive, len(prims))
	copy(out, prims)
	return out
}

func boxContains(min, max types.Vec3, bbox [2]types.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if bbox[0][axis] < min[axis] || bbox[1][axis] > max[axis] {
			return false
		}
	}
	return true
}

// Check the containment, coverage and partition invariants for every node.
func checkTreeInvariants(t *testing.T, b *Bvh) {
	t.Helper()

	prims := b.Primitives()
	root := b.Root()
	if root.Start != 0 || root.End != len(prims) {
		t.Fatalf("expected root to span [0, %d); got [%d, %d)", len(prims), root.Start, root.End)
	}

	var walk func(node *Node)
	walk = func(node *Node) {
		for i := node.Start; i < node.End; i++ {
			if !boxContains(node.Min, node.Max, prims[i].BBox()) {
				t.Fatalf("node [%d, %d) does not cover primitive %d", node.Start, node.End, i)
			}
		}

		if node.IsLeaf() {
			if node.Len() > b.Options().LeafThreshold {
				t.Fatalf("leaf [%d, %d) exceeds leaf threshold %d", node.Start, node.End, b.Options().LeafThreshold)
			}
			return
		}

		if node.Left == nil || node.Right == nil {
			t.Fatalf("internal node [%d, %d) must have two children", node.Start, node.End)
		}
		if node.Left.Start != node.Start || node.Left.End != node.Right.Start || node.Right.End != node.End {
			t.Fatalf(
				"children [%d, %d) and [%d, %d) do not partition parent [%d, %d)",
				node.Left.Start, node.Left.End, node.Right.Start, node.Right.End, node.Start, node.End,
			)
		}
		if node.Left.Len() == 0 || node.Right.Len() == 0 {
			t.Fatalf("internal node [%d, %d) has an empty child", node.Start, node.End)
		}
		for _, child := range []*Node{node.Left, node.Right} {
			if !boxContains(node.Min, node.Max, [2]types.Vec3{child.Min, child.Max}) {
				t.Fatalf("child box [%v, %v] escapes parent box [%v, %v]", child.Min, child.Max, node.Min, node.Max)
			}
		}

		walk(node.Left)
		walk(node.Right)
	}
	walk(root)
}
