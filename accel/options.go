package accel

import "strings"

// The default maximum number of primitives stored in a BVH leaf.
const DefaultLeafThreshold = 10

type Options struct {
	// Ranges with at most this many primitives become leafs. Zero selects
	// DefaultLeafThreshold.
	LeafThreshold int

	// The strategy used for partitioning primitive ranges. Nil selects
	// MedianSplit.
	Split SplitStrategy
}

// Fill in defaults for unset fields.
func (o Options) withDefaults() Options {
	if o.LeafThreshold == 0 {
		o.LeafThreshold = DefaultLeafThreshold
	}
	if o.Split == nil {
		o.Split = MedianSplit
	}
	return o
}

// Validate options.
func (o Options) Validate() error {
	if o.LeafThreshold < 0 {
		return ErrInvalidLeafThreshold
	}
	return nil
}

// Look up a split strategy by name ("median" or "sah").
func ParseSplitStrategy(name string) (SplitStrategy, error) {
	switch strings.ToLower(name) {
	case "", "median":
		return MedianSplit, nil
	case "sah":
		return SurfaceAreaHeuristic, nil
	}
	return nil, ErrUnknownSplitStrategy
}
