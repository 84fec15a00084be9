package accel

import (
	"math"
	"time"

	"github.com/achilleasa/bvhtrace/log"
	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
)

type buildStats struct {
	partitionedItems int
	totalItems       int
	nodes            int
	leafs            int
	maxDepth         int
}

type builder struct {
	logger log.Logger

	// The shared primitive list. Partitioning reorders it in place so that
	// every node owns a contiguous index range.
	prims []scene.Primitive

	// Ranges with at most this many items become leafs.
	leafThreshold int

	// The split strategy to use.
	split SplitStrategy

	// Stats
	stats buildStats
}

// Construct a BVH tree over prims, reordering the slice in place. The slice
// must not be empty.
func buildTree(logger log.Logger, prims []scene.Primitive, opts Options) *Node {
	b := &builder{
		logger:        logger,
		prims:         prims,
		leafThreshold: opts.LeafThreshold,
		split:         opts.Split,
		stats: buildStats{
			totalItems: len(prims),
		},
	}

	start := time.Now()
	root := b.partition(0, len(prims), 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, split: %s, maxDepth: %d, nodes: %d, leafs: %d, items: %d/%d",
		time.Since(start).Nanoseconds()/1e6, b.split,
		b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
		b.stats.partitionedItems, b.stats.totalItems,
	)
	return root
}

// Partition the range [start, end) and return the subtree root.
func (b *builder) partition(start, end, depth int) *Node {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	node := &Node{
		Min:   types.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max:   types.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
		Start: start,
		End:   end,
	}

	// Calculate bounding box for node
	for i := start; i < end; i++ {
		bbox := b.prims[i].BBox()
		node.Min = types.MinVec3(node.Min, bbox[0])
		node.Max = types.MaxVec3(node.Max, bbox[1])
	}

	// Do we have few enough items for a leaf?
	if end-start <= b.leafThreshold {
		return b.createLeaf(node)
	}

	mid := b.split.Split(b.prims, start, end, node.Min, node.Max)
	if mid <= start || mid >= end {
		// Both halves must be non-empty or the recursion never terminates
		b.logger.Warningf("split strategy %s returned %d for range [%d, %d); using median split", b.split, mid, start, end)
		mid = MedianSplit.Split(b.prims, start, end, node.Min, node.Max)
	}
	b.stats.nodes++

	node.Left = b.partition(start, mid, depth+1)
	node.Right = b.partition(mid, end, depth+1)
	return node
}

func (b *builder) createLeaf(node *Node) *Node {
	b.stats.leafs++
	b.stats.partitionedItems += node.Len()
	return node
}
