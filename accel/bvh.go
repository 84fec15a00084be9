package accel

import (
	"time"

	"github.com/achilleasa/bvhtrace/log"
	"github.com/achilleasa/bvhtrace/scene"
)

// The AccelStruct interface is implemented by structures that answer
// ray queries over a set of primitives.
type AccelStruct interface {
	// Take ownership of prims and prepare the structure for queries. The
	// slice may be reordered in place. Calling Build again discards the
	// previous state.
	Build(prims []scene.Primitive) error

	// Intersect ray with the structure. In Nearest mode the returned record
	// has the smallest t inside [ray.Start, ray.End]; in Any mode the record
	// belongs to an unspecified intersecting primitive.
	Intersect(ray scene.Ray, mode QueryMode) (scene.HitRecord, bool)
}

// Bvh is a bounding volume hierarchy over a primitive slice.
//
// Build must return before any call to Intersect. Once built, the tree and the
// reordered primitive slice are never modified, so Intersect may be called
// from any number of goroutines concurrently.
type Bvh struct {
	logger log.Logger
	opts   Options

	prims []scene.Primitive
	root  *Node
	stats Stats

	counterSet
}

// Create an empty BVH.
func New(opts Options) (*Bvh, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Bvh{
		logger: log.New("bvh"),
		opts:   opts.withDefaults(),
	}, nil
}

// Build the tree over prims, reordering the slice in place.
func (b *Bvh) Build(prims []scene.Primitive) error {
	if len(prims) == 0 {
		return ErrNoPrimitives
	}

	// Allow building through a zero value Bvh.
	if b.logger == nil {
		b.logger = log.New("bvh")
	}
	b.opts = b.opts.withDefaults()

	start := time.Now()
	root := buildTree(b.logger, prims, b.opts)

	b.prims = prims
	b.root = root
	b.stats = collectStats(root)
	b.stats.BuildTime = time.Since(start)
	b.ResetCounters()

	b.logger.Infof(
		"built BVH over %d primitives: %d nodes, %d leafs, max depth %d, avg child volume ratio %.3f",
		b.stats.Primitives, b.stats.Nodes, b.stats.Leafs, b.stats.MaxDepth, b.stats.VolumeRatio,
	)
	return nil
}

// Intersect ray with the tree. Querying an unbuilt tree reports no hit.
func (b *Bvh) Intersect(ray scene.Ray, mode QueryMode) (scene.HitRecord, bool) {
	var rec scene.HitRecord
	if b.root == nil {
		return rec, false
	}

	tr := traversal{prims: b.prims, mode: mode}
	hit := tr.run(b.root, &ray, &rec)

	b.add(&tr)
	return rec, hit
}

// Get the tree root; nil before Build.
func (b *Bvh) Root() *Node {
	return b.root
}

// Get the primitive slice in tree order.
func (b *Bvh) Primitives() []scene.Primitive {
	return b.prims
}

// Get the options in effect.
func (b *Bvh) Options() Options {
	return b.opts
}

// Get structural statistics for the last built tree.
func (b *Bvh) Stats() Stats {
	return b.stats
}
