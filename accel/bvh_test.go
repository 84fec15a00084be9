package accel

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/achilleasa/bvhtrace/scene"
	"golang.org/x/sync/errgroup"
)

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{LeafThreshold: -1}); err != ErrInvalidLeafThreshold {
		t.Fatalf("expected ErrInvalidLeafThreshold; got %v", err)
	}

	b, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if opts := b.Options(); opts.LeafThreshold != DefaultLeafThreshold || opts.Split != MedianSplit {
		t.Fatalf("expected default options; got %+v", opts)
	}
}

func TestParseSplitStrategy(t *testing.T) {
	type spec struct {
		in     string
		exp    SplitStrategy
		expErr error
	}
	specs := []spec{
		{"", MedianSplit, nil},
		{"median", MedianSplit, nil},
		{"SAH", SurfaceAreaHeuristic, nil},
		{"octree", nil, ErrUnknownSplitStrategy},
	}

	for index, s := range specs {
		split, err := ParseSplitStrategy(s.in)
		if err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
		if split != s.exp {
			t.Fatalf("[spec %d] expected strategy %v; got %v", index, s.exp, split)
		}
	}
}

func TestParseQueryMode(t *testing.T) {
	type spec struct {
		in     string
		exp    QueryMode
		expErr error
	}
	specs := []spec{
		{"", Nearest, nil},
		{"nearest", Nearest, nil},
		{"Any", Any, nil},
		{"first", Nearest, ErrUnknownQueryMode},
	}

	for index, s := range specs {
		mode, err := ParseQueryMode(s.in)
		if err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
		if mode != s.exp {
			t.Fatalf("[spec %d] expected mode %s; got %s", index, s.exp, mode)
		}
	}
}

func TestBuildWithoutPrimitives(t *testing.T) {
	for _, as := range []AccelStruct{&Bvh{}, &LinearScan{}} {
		if err := as.Build(nil); err != ErrNoPrimitives {
			t.Fatalf("[%T] expected ErrNoPrimitives; got %v", as, err)
		}
	}

	b, _ := New(Options{})
	if err := b.Build([]scene.Primitive{}); err != ErrNoPrimitives {
		t.Fatalf("expected ErrNoPrimitives; got %v", err)
	}
	if b.Root() != nil {
		t.Fatal("expected failed build to leave the tree empty")
	}

	// Querying an unbuilt tree is not an error
	for _, mode := range []QueryMode{Nearest, Any} {
		if _, ok := b.Intersect(randomRays(1, 1)[0], mode); ok {
			t.Fatalf("[%s] expected no hit from an unbuilt tree", mode)
		}
	}
	if b.Counters() != (Counters{}) {
		t.Fatalf("expected unbuilt tree queries to leave counters untouched; got %+v", b.Counters())
	}
}

func TestZeroValueBvh(t *testing.T) {
	var b Bvh
	if err := b.Build(mockRow(3)); err != nil {
		t.Fatal(err)
	}
	if !b.Root().IsLeaf() || b.Root().Len() != 3 {
		t.Fatalf("expected a single leaf over 3 primitives; got %+v", b.Root())
	}
	if b.Options().LeafThreshold != DefaultLeafThreshold || b.Options().Split != MedianSplit {
		t.Fatalf("expected default options; got %+v", b.Options())
	}

	prims := randomScene(t, 5, 60)
	var ref LinearScan
	if err := ref.Build(clonePrims(prims)); err != nil {
		t.Fatal(err)
	}

	var as AccelStruct = &Bvh{}
	if err := as.Build(prims); err != nil {
		t.Fatal(err)
	}
	checkTreeInvariants(t, as.(*Bvh))

	for index, ray := range randomRays(6, 200) {
		rec, ok := as.Intersect(ray, Nearest)
		expRec, expOk := ref.Intersect(ray, Nearest)
		if ok != expOk || (ok && math.Abs(rec.T-expRec.T) > 1e-9) {
			t.Fatalf("[ray %d] expected hit %t at t=%f; got hit %t at t=%f", index, expOk, expRec.T, ok, rec.T)
		}
	}
}

func TestRebuildReplacesTree(t *testing.T) {
	b := mustBuild(t, Options{}, randomScene(t, 1, 100))
	b.Intersect(randomRays(1, 1)[0], Nearest)

	rows, err := scene.SphereRow(12, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if err = b.Build(rows); err != nil {
		t.Fatal(err)
	}

	if b.Stats().Primitives != 12 || len(b.Primitives()) != 12 {
		t.Fatalf("expected rebuilt tree over 12 primitives; got %+v", b.Stats())
	}
	if b.Counters() != (Counters{}) {
		t.Fatalf("expected rebuild to reset counters; got %+v", b.Counters())
	}
}

type querier interface {
	Intersect(ray scene.Ray, mode QueryMode) (scene.HitRecord, bool)
}

// Every query must agree with an exhaustive scan over the same primitives.
func TestIntersectMatchesLinearScan(t *testing.T) {
	prims := randomScene(t, 42, 400)
	rays := randomRays(43, 2000)

	var ref LinearScan
	if err := ref.Build(clonePrims(prims)); err != nil {
		t.Fatal(err)
	}

	for _, split := range []SplitStrategy{MedianSplit, SurfaceAreaHeuristic} {
		for _, leafThreshold := range []int{1, 4, 10} {
			b := mustBuild(t, Options{LeafThreshold: leafThreshold, Split: split}, clonePrims(prims))
			fb := b.Flatten()
			tag := fmt.Sprintf("%s/%d", split, leafThreshold)

			hits := 0
			for index, ray := range rays {
				expRec, expOk := ref.Intersect(ray, Nearest)
				if expOk {
					hits++
				}

				for _, as := range []querier{b, fb} {
					rec, ok := as.Intersect(ray, Nearest)
					if ok != expOk {
						t.Fatalf("[%s %T ray %d] expected nearest hit to be %t; got %t", tag, as, index, expOk, ok)
					}
					if ok && (rec.Primitive != expRec.Primitive || math.Abs(rec.T-expRec.T) > 1e-9) {
						t.Fatalf("[%s %T ray %d] expected nearest hit at t=%f; got t=%f", tag, as, index, expRec.T, rec.T)
					}

					rec, ok = as.Intersect(ray, Any)
					if ok != expOk {
						t.Fatalf("[%s %T ray %d] expected any-hit to be %t; got %t", tag, as, index, expOk, ok)
					}
					if ok && !ray.InRange(rec.T) {
						t.Fatalf("[%s %T ray %d] any-hit t=%f outside ray interval", tag, as, index, rec.T)
					}
				}
			}

			// Make sure the scene is not trivially missed
			if hits == 0 {
				t.Fatalf("[%s] expected at least one ray to hit the scene", tag)
			}
		}
	}
}

func TestIntersectIsIdempotent(t *testing.T) {
	b := mustBuild(t, Options{Split: SurfaceAreaHeuristic}, randomScene(t, 5, 300))
	for _, ray := range randomRays(6, 200) {
		for _, mode := range []QueryMode{Nearest, Any} {
			a, aOk := b.Intersect(ray, mode)
			c, cOk := b.Intersect(ray, mode)
			if aOk != cOk || a != c {
				t.Fatalf("[%s] expected repeated queries to return the same result", mode)
			}
		}
	}
}

func TestConcurrentQueries(t *testing.T) {
	b := mustBuild(t, Options{}, randomScene(t, 11, 300))
	rays := randomRays(12, 800)

	expected := make([]scene.HitRecord, len(rays))
	for i, ray := range rays {
		expected[i], _ = b.Intersect(ray, Nearest)
	}
	b.ResetCounters()

	var g errgroup.Group
	const workers = 8
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(rays); i += workers {
				if rec, _ := b.Intersect(rays[i], Nearest); rec != expected[i] {
					return fmt.Errorf("ray %d: concurrent result differs from serial result", i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	// Replaying the queries serially must produce the same counter totals
	concurrent := b.Counters()
	b.ResetCounters()
	for _, ray := range rays {
		b.Intersect(ray, Nearest)
	}
	serial := b.Counters()
	if concurrent != serial {
		t.Fatalf("expected concurrent counters %+v to match serial counters %+v", concurrent, serial)
	}
}

func TestStatsString(t *testing.T) {
	b := mustBuild(t, Options{LeafThreshold: 1}, mockRow(4))
	out := b.Stats().String()

	for _, exp := range []string{"Primitives", "Nodes", "Leafs", "Max depth", "Build time"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected stats table to contain %q; got:\n%s", exp, out)
		}
	}
}

func benchmarkIntersect(b *testing.B, split SplitStrategy, mode QueryMode) {
	bvh := mustBuild(b, Options{Split: split}, randomScene(b, 1, 5000))
	rays := randomRays(2, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bvh.Intersect(rays[i%len(rays)], mode)
	}
}

func BenchmarkIntersectMedianNearest(b *testing.B) { benchmarkIntersect(b, MedianSplit, Nearest) }
func BenchmarkIntersectMedianAny(b *testing.B)     { benchmarkIntersect(b, MedianSplit, Any) }
func BenchmarkIntersectSAHNearest(b *testing.B)    { benchmarkIntersect(b, SurfaceAreaHeuristic, Nearest) }

func BenchmarkBuild(b *testing.B) {
	prims := randomScene(b, 1, 5000)
	bvh, _ := New(Options{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bvh.Build(prims)
	}
}
