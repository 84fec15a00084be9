package accel

import (
	"math"
	"sort"

	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
)

const (
	// The SAH splitter will not evaluate candidates along an axis if the
	// node bbox along that axis is less than this threshold.
	minSideLength = 1e-9

	// The number of candidate split planes evaluated per axis by the SAH
	// splitter.
	sahBins = 16
)

var (
	// Sort the range by centroid along the widest axis and split at the
	// middle index.
	MedianSplit SplitStrategy = medianSplit{}

	// Pick the split plane with the lowest surface area heuristic score and
	// fall back to a median split when no plane improves on the unsplit range.
	SurfaceAreaHeuristic SplitStrategy = surfaceAreaHeuristic{bins: sahBins}
)

// A SplitStrategy partitions a primitive range for the BVH builder.
type SplitStrategy interface {
	// Reorder prims[start:end] in place and return an index mid with
	// start < mid < end so that [start, mid) and [mid, end) form the two
	// children. Callers guarantee end-start >= 2. min and max are the
	// aggregate bounds of the range.
	Split(prims []scene.Primitive, start, end int, min, max types.Vec3) int

	String() string
}

type medianSplit struct{}

func (medianSplit) Split(prims []scene.Primitive, start, end int, min, max types.Vec3) int {
	axis := max.Sub(min).MaxAxis()
	sortByCenter(prims[start:end], axis)
	return (start + end) / 2
}

func (medianSplit) String() string {
	return "median"
}

// Stable sort so primitives with equal centroids keep their relative order
// and the resulting tree is deterministic.
func sortByCenter(items []scene.Primitive, axis types.Axis) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Center()[axis] < items[j].Center()[axis]
	})
}

type splitScore struct {
	axis       types.Axis
	splitPoint float64

	leftCount, rightCount int
	score                 float64
}

// Order candidates by score, then axis, then split point so that the chosen
// split does not depend on the order in which concurrent scores arrive.
func (s splitScore) better(other splitScore) bool {
	if s.score != other.score {
		return s.score < other.score
	}
	if s.axis != other.axis {
		return s.axis < other.axis
	}
	return s.splitPoint < other.splitPoint
}

type surfaceAreaHeuristic struct {
	bins int
}

func (h surfaceAreaHeuristic) Split(prims []scene.Primitive, start, end int, min, max types.Vec3) int {
	items := prims[start:end]
	scoreChan := make(chan splitScore)
	pendingScores := 0

	// Score candidate planes in parallel
	side := max.Sub(min)
	for axis := types.XAxis; axis <= types.ZAxis; axis++ {
		if side[axis] < minSideLength {
			continue
		}

		step := side[axis] / float64(h.bins)
		for bin := 1; bin < h.bins; bin++ {
			pendingScores++
			go func(axis types.Axis, splitPoint float64) {
				scoreChan <- scoreSplit(items, axis, splitPoint)
			}(axis, min[axis]+step*float64(bin))
		}
	}

	// Process all scores and keep the best split that beats the unsplit range
	unsplitScore := scorePartition(items)
	var best splitScore
	found := false
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-scoreChan
		if candidate.leftCount == 0 || candidate.rightCount == 0 || candidate.score >= unsplitScore {
			continue
		}
		if !found || candidate.better(best) {
			best = candidate
			found = true
		}
	}

	if !found {
		return MedianSplit.Split(prims, start, end, min, max)
	}

	// Items left of the plane sort first
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Center()[best.axis] < best.splitPoint && items[j].Center()[best.axis] >= best.splitPoint
	})
	return start + best.leftCount
}

func (surfaceAreaHeuristic) String() string {
	return "sah"
}

// Score a split using the formula (lower score is better):
//
// left count * left BBOX area + right count * right BBOX area.
//
// Splits that produce an empty side get the worst possible score.
func scoreSplit(items []scene.Primitive, axis types.Axis, splitPoint float64) splitScore {
	left, right := scene.EmptyBounds(), scene.EmptyBounds()
	res := splitScore{axis: axis, splitPoint: splitPoint}

	for _, item := range items {
		bbox := item.BBox()
		if item.Center()[axis] < splitPoint {
			res.leftCount++
			left.Min = types.MinVec3(left.Min, bbox[0])
			left.Max = types.MaxVec3(left.Max, bbox[1])
		} else {
			res.rightCount++
			right.Min = types.MinVec3(right.Min, bbox[0])
			right.Max = types.MaxVec3(right.Max, bbox[1])
		}
	}

	if res.leftCount == 0 || res.rightCount == 0 {
		res.score = math.MaxFloat64
		return res
	}

	res.score = float64(res.leftCount)*halfArea(left.Extent()) + float64(res.rightCount)*halfArea(right.Extent())
	return res
}

// Calculate score for an unsplit range: count * BBOX area.
func scorePartition(items []scene.Primitive) float64 {
	b := scene.EmptyBounds()
	for _, item := range items {
		bbox := item.BBox()
		b.Min = types.MinVec3(b.Min, bbox[0])
		b.Max = types.MaxVec3(b.Max, bbox[1])
	}
	return float64(len(items)) * halfArea(b.Extent())
}

func halfArea(side types.Vec3) float64 {
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}
