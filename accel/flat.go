package accel

import (
	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
)

// The initial traversal stack capacity. Median split trees are log2(N)
// levels deep so this is rarely exceeded.
const flatStackSize = 64

// Flat BVH node. Nodes are stored in depth-first order with the root at
// index 0, which makes the LData/RData pair unambiguous:
//
// - For internal nodes LData and RData are both > 0 and point to the L/R child nodes
// - For leafs LData is <= 0 and holds the negated index of the first
// primitive while RData holds the primitive count
type FlatNode struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set left and right child node indices.
func (n *FlatNode) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices.
func (n *FlatNode) GetChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Set primitive index and count.
func (n *FlatNode) SetPrimitives(firstPrimIndex, count uint32) {
	n.LData = -int32(firstPrimIndex)
	n.RData = int32(count)
}

// Get primitive index and count.
func (n *FlatNode) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// Check if this is a leaf node.
func (n *FlatNode) IsLeaf() bool {
	return n.LData <= 0
}

// FlatBvh is a BVH packed into a contiguous node list and traversed with an
// explicit stack instead of recursion. It shares the primitive slice of the
// Bvh it was created from.
type FlatBvh struct {
	Nodes []FlatNode

	prims []scene.Primitive

	counterSet
}

// Pack the tree into a flat node list. Returns nil if the tree has not been
// built.
func (b *Bvh) Flatten() *FlatBvh {
	if b.root == nil {
		return nil
	}

	fb := &FlatBvh{
		Nodes: make([]FlatNode, 0, b.stats.Nodes),
		prims: b.prims,
	}
	fb.pack(b.root)
	return fb
}

// Append node and its subtree and return the node index.
func (fb *FlatBvh) pack(node *Node) uint32 {
	nodeIndex := uint32(len(fb.Nodes))
	fb.Nodes = append(fb.Nodes, FlatNode{Min: node.Min, Max: node.Max})

	if node.IsLeaf() {
		fb.Nodes[nodeIndex].SetPrimitives(uint32(node.Start), uint32(node.Len()))
		return nodeIndex
	}

	left := fb.pack(node.Left)
	right := fb.pack(node.Right)
	fb.Nodes[nodeIndex].SetChildNodes(left, right)
	return nodeIndex
}

// Intersect ray with the flattened tree. Results match Bvh.Intersect.
func (fb *FlatBvh) Intersect(ray scene.Ray, mode QueryMode) (scene.HitRecord, bool) {
	var rec scene.HitRecord
	if len(fb.Nodes) == 0 {
		return rec, false
	}

	tr := traversal{prims: fb.prims, mode: mode}
	defer fb.add(&tr)
	hit := false

	var stackBuf [flatStackSize]uint32
	stack := append(stackBuf[:0], 0)
	for len(stack) > 0 {
		node := &fb.Nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		// The box test runs against the current, possibly narrowed, interval
		if _, _, ok := hitBox(node.Min, node.Max, &ray); !ok {
			tr.culled++
			continue
		}
		tr.visited++

		if node.IsLeaf() {
			first, count := node.GetPrimitives()
			for i := first; i < first+count; i++ {
				if tr.testPrimitive(fb.prims[i], &ray, &rec) {
					if mode == Any {
						return rec, true
					}
					hit = true
				}
			}
			continue
		}

		// Push the farther child first so the nearer one is popped next
		left, right := node.GetChildNodes()
		tLeft, _, okLeft := hitBox(fb.Nodes[left].Min, fb.Nodes[left].Max, &ray)
		tRight, _, okRight := hitBox(fb.Nodes[right].Min, fb.Nodes[right].Max, &ray)
		if okLeft && (!okRight || tLeft <= tRight) {
			stack = append(stack, right, left)
		} else {
			stack = append(stack, left, right)
		}
	}

	return rec, hit
}
