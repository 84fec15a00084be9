package accel

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Structural statistics for a built tree.
type Stats struct {
	Primitives int

	// Total node count, including leafs.
	Nodes    int
	Leafs    int
	MaxDepth int

	AvgLeafSize  float64
	AvgLeafDepth float64

	// Mean, over internal nodes, of the ratio between the sum of the
	// children's volumes and the parent's volume. Internal nodes with zero
	// volume are skipped.
	VolumeRatio float64

	BuildTime time.Duration
}

// Node visit counters accumulated by queries.
type Counters struct {
	// Nodes whose box overlapped the ray and were descended into.
	Visited uint64

	// Nodes rejected by the box test or by a narrowed ray interval.
	Culled uint64
}

// Get the fraction of tested nodes that were culled.
func (c Counters) CullRatio() float64 {
	total := c.Visited + c.Culled
	if total == 0 {
		return 0
	}
	return float64(c.Culled) / float64(total)
}

// Counters shared by concurrent queries.
type counterSet struct {
	visited atomic.Uint64
	culled  atomic.Uint64
}

func (c *counterSet) add(tr *traversal) {
	c.visited.Add(tr.visited)
	c.culled.Add(tr.culled)
}

// Get node visit counters accumulated since the last build or reset.
func (c *counterSet) Counters() Counters {
	return Counters{
		Visited: c.visited.Load(),
		Culled:  c.culled.Load(),
	}
}

// Reset node visit counters.
func (c *counterSet) ResetCounters() {
	c.visited.Store(0)
	c.culled.Store(0)
}

type statsCollector struct {
	stats Stats

	depthSum   int
	ratioSum   float64
	ratioCount int
}

func collectStats(root *Node) Stats {
	if root == nil {
		return Stats{}
	}

	c := &statsCollector{}
	c.walk(root, 0)

	c.stats.Primitives = root.Len()
	if c.stats.Leafs > 0 {
		c.stats.AvgLeafSize = float64(c.stats.Primitives) / float64(c.stats.Leafs)
		c.stats.AvgLeafDepth = float64(c.depthSum) / float64(c.stats.Leafs)
	}
	if c.ratioCount > 0 {
		c.stats.VolumeRatio = c.ratioSum / float64(c.ratioCount)
	}
	return c.stats
}

func (c *statsCollector) walk(node *Node, depth int) {
	c.stats.Nodes++
	if depth > c.stats.MaxDepth {
		c.stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		c.stats.Leafs++
		c.depthSum += depth
		return
	}

	if vol := node.volume(); vol > 0 {
		c.ratioSum += (node.Left.volume() + node.Right.volume()) / vol
		c.ratioCount++
	}

	c.walk(node.Left, depth+1)
	c.walk(node.Right, depth+1)
}

// Build a tabular representation of the statistics.
func (s Stats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", s.Primitives)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", s.Nodes)})
	table.Append([]string{"Leafs", fmt.Sprintf("%d", s.Leafs)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", s.MaxDepth)})
	table.Append([]string{"Avg. leaf size", fmt.Sprintf("%.2f", s.AvgLeafSize)})
	table.Append([]string{"Avg. leaf depth", fmt.Sprintf("%.2f", s.AvgLeafDepth)})
	table.Append([]string{"Child volume ratio", fmt.Sprintf("%.3f", s.VolumeRatio)})
	table.SetFooter([]string{"Build time", s.BuildTime.String()})

	table.Render()
	return buf.String()
}
