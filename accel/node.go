package accel

import "github.com/achilleasa/bvhtrace/types"

// A BVH tree node. Leafs have no children and own the primitive index range
// [Start, End). Internal nodes own exactly two children; their range is the
// union of their children's ranges and is kept for diagnostics.
type Node struct {
	// Bounding box enclosing every primitive below this node.
	Min types.Vec3
	Max types.Vec3

	Left  *Node
	Right *Node

	Start int
	End   int
}

// Check if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Get the number of primitives below this node.
func (n *Node) Len() int {
	return n.End - n.Start
}

func (n *Node) volume() float64 {
	side := n.Max.Sub(n.Min)
	return side[0] * side[1] * side[2]
}
