package accel

import (
	"testing"

	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
)

func TestBuildNodeCounts(t *testing.T) {
	type primSpec struct {
		min types.Vec3
		max types.Vec3
	}

	primSpecs := []primSpec{
		{types.XYZ(-2, 0, -2), types.XYZ(-1, 1, -1)},
		{types.XYZ(1, 0, -2), types.XYZ(2, 1, -1)},
		{types.XYZ(-2, 0, 1), types.XYZ(-1, 1, 2)},
		{types.XYZ(1, 0, 1), types.XYZ(2, 1, 2)},
	}

	type spec struct {
		leafThreshold int
		expNodes      int
		expLeafs      int
		expLeafSize   float64
	}
	specs := []spec{
		{1, 7, 4, 1},
		{2, 3, 2, 2},
		{4, 1, 1, 4},
	}

	for _, split := range []SplitStrategy{MedianSplit, SurfaceAreaHeuristic} {
		for index, s := range specs {
			itemList := make([]scene.Primitive, len(primSpecs))
			for idx, ps := range primSpecs {
				itemList[idx] = &mockPrim{min: ps.min, max: ps.max, hitT: -1}
			}

			b := mustBuild(t, Options{LeafThreshold: s.leafThreshold, Split: split}, itemList)
			stats := b.Stats()
			if stats.Nodes != s.expNodes {
				t.Fatalf("[%s spec %d] expected bvh tree to have %d nodes; got %d", split, index, s.expNodes, stats.Nodes)
			}
			if stats.Leafs != s.expLeafs {
				t.Fatalf("[%s spec %d] expected bvh tree to have %d leafs; got %d", split, index, s.expLeafs, stats.Leafs)
			}
			if stats.AvgLeafSize != s.expLeafSize {
				t.Fatalf("[%s spec %d] expected avg leaf size %f; got %f", split, index, s.expLeafSize, stats.AvgLeafSize)
			}
			checkTreeInvariants(t, b)
		}
	}
}

func TestLeafThresholdBoundary(t *testing.T) {
	b := mustBuild(t, Options{}, mockRow(DefaultLeafThreshold))
	if !b.Root().IsLeaf() {
		t.Fatalf("expected %d primitives to produce a single leaf", DefaultLeafThreshold)
	}
	if stats := b.Stats(); stats.Nodes != 1 || stats.Leafs != 1 || stats.MaxDepth != 0 {
		t.Fatalf("expected a single leaf tree; got %+v", stats)
	}

	b = mustBuild(t, Options{}, mockRow(DefaultLeafThreshold+1))
	if b.Root().IsLeaf() {
		t.Fatalf("expected %d primitives to produce an internal node", DefaultLeafThreshold+1)
	}
	checkTreeInvariants(t, b)
}

func TestTreeInvariants(t *testing.T) {
	type spec struct {
		count         int
		leafThreshold int
		split         SplitStrategy
	}
	specs := []spec{
		{1, 10, MedianSplit},
		{37, 1, MedianSplit},
		{500, 4, MedianSplit},
		{500, 10, MedianSplit},
		{37, 1, SurfaceAreaHeuristic},
		{500, 4, SurfaceAreaHeuristic},
		{500, 10, SurfaceAreaHeuristic},
	}

	for index, s := range specs {
		prims := randomScene(t, int64(index), s.count)
		orig := make(map[scene.Primitive]bool, len(prims))
		for _, p := range prims {
			orig[p] = true
		}

		b := mustBuild(t, Options{LeafThreshold: s.leafThreshold, Split: s.split}, prims)
		checkTreeInvariants(t, b)

		// The build permutes the caller's slice in place
		if len(b.Primitives()) != s.count || &b.Primitives()[0] != &prims[0] {
			t.Fatalf("[spec %d] expected the bvh to own the caller's slice", index)
		}
		for _, p := range b.Primitives() {
			if !orig[p] {
				t.Fatalf("[spec %d] primitive set changed during build", index)
			}
			delete(orig, p)
		}

		stats := b.Stats()
		if stats.Primitives != s.count || stats.Nodes != 2*stats.Leafs-1 {
			t.Fatalf("[spec %d] inconsistent stats %+v", index, stats)
		}
	}
}

func TestMedianSplitAxisSelection(t *testing.T) {
	type spec struct {
		// Offset between consecutive primitives.
		step    types.Vec3
		expAxis int
	}
	specs := []spec{
		{types.XYZ(1, 0, 0), 0},
		{types.XYZ(0, 1, 0), 1},
		{types.XYZ(0, 0, 1), 2},
		{types.XYZ(0.5, 2, 1), 1},
		// x and z tie; x wins
		{types.XYZ(1, 0, 1), 0},
	}

	for index, s := range specs {
		prims := make([]scene.Primitive, 12)
		for i := range prims {
			// Insert in reverse order so the sort has work to do
			p := s.step.Mul(float64(len(prims) - i))
			prims[i] = &mockPrim{min: p, max: p.Add(types.XYZ(0.1, 0.1, 0.1)), hitT: -1}
		}

		b := mustBuild(t, Options{}, prims)
		left, right := b.Root().Left, b.Root().Right
		if left == nil || right == nil {
			t.Fatalf("[spec %d] expected root to be split", index)
		}
		if left.Max[s.expAxis] >= right.Min[s.expAxis] {
			t.Fatalf("[spec %d] expected children to be separated along axis %d", index, s.expAxis)
		}
		if left.Len() != 6 || right.Len() != 6 {
			t.Fatalf("[spec %d] expected an index-balanced split; got %d/%d", index, left.Len(), right.Len())
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	for _, split := range []SplitStrategy{MedianSplit, SurfaceAreaHeuristic} {
		prims := randomScene(t, 99, 300)

		// Duplicate half of the primitives so centroids tie
		for i := 0; i < 150; i++ {
			prims[150+i] = prims[i]
		}

		a := mustBuild(t, Options{LeafThreshold: 3, Split: split}, clonePrims(prims))
		b := mustBuild(t, Options{LeafThreshold: 3, Split: split}, clonePrims(prims))

		for i := range a.Primitives() {
			if a.Primitives()[i] != b.Primitives()[i] {
				t.Fatalf("[%s] expected identical primitive order; index %d differs", split, i)
			}
		}
		if a.Stats().Nodes != b.Stats().Nodes || a.Stats().MaxDepth != b.Stats().MaxDepth {
			t.Fatalf("[%s] expected identical tree shape", split)
		}
	}
}

func TestSurfaceAreaHeuristicFallback(t *testing.T) {
	// Identical boxes can not be separated by any plane; the splitter must
	// fall back to a median split instead of producing an oversized leaf.
	prims := make([]scene.Primitive, 25)
	for i := range prims {
		prims[i] = &mockPrim{min: types.XYZ(0, 0, 0), max: types.XYZ(1, 1, 1), hitT: -1}
	}

	b := mustBuild(t, Options{LeafThreshold: 2, Split: SurfaceAreaHeuristic}, prims)
	checkTreeInvariants(t, b)
}

// Always returns start which would leave the left half empty.
type lopsidedSplit struct{}

func (lopsidedSplit) Split(_ []scene.Primitive, start, _ int, _, _ types.Vec3) int {
	return start
}

func (lopsidedSplit) String() string {
	return "lopsided"
}

func TestEmptyHalfSplitFallsBackToMedian(t *testing.T) {
	b := mustBuild(t, Options{LeafThreshold: 1, Split: lopsidedSplit{}}, mockRow(9))
	checkTreeInvariants(t, b)

	if exp := 2*9 - 1; b.Stats().Nodes != exp {
		t.Fatalf("expected %d nodes; got %d", exp, b.Stats().Nodes)
	}
}

func TestVolumeRatio(t *testing.T) {
	prims := []scene.Primitive{
		&mockPrim{min: types.XYZ(0, 0, 0), max: types.XYZ(1, 1, 1), hitT: -1},
		&mockPrim{min: types.XYZ(3, 0, 0), max: types.XYZ(4, 1, 1), hitT: -1},
	}

	b := mustBuild(t, Options{LeafThreshold: 1}, prims)
	// Two unit boxes inside a 4x1x1 parent
	if got := b.Stats().VolumeRatio; got != 0.5 {
		t.Fatalf("expected volume ratio 0.5; got %f", got)
	}
}
