package layout

import "fmt"

// LayeredOptions controls spacing of the Layered builder.
type LayeredOptions struct {
	NodeSpacing  float64
	LayerSpacing float64
}

// DefaultLayeredOptions returns the spacing used by the CLI.
func DefaultLayeredOptions() LayeredOptions {
	return LayeredOptions{NodeSpacing: 40, LayerSpacing: 60}
}

type box struct{ w, h float64 }

type link struct{ from, to int }

// Layered is a small top-down placement engine. Node 0 is the root; every
// node sits on the layer of its breadth-first distance from the root and
// layers are centred horizontally. Edges pointing to the same or an earlier
// layer are routed around the right-hand side of the graph.
//
// A Layered is single-use: create a new one for every Run.
type Layered struct {
	opts  LayeredOptions
	nodes []box
	edges []link
}

// NewLayered creates an empty builder.
func NewLayered(opts LayeredOptions) *Layered {
	return &Layered{opts: opts}
}

// MakeNode implements Builder.
func (l *Layered) MakeNode(height, width float64) int {
	l.nodes = append(l.nodes, box{w: width, h: height})
	return len(l.nodes) - 1
}

// MakeEdge implements Builder.
func (l *Layered) MakeEdge(from, to int) int {
	l.edges = append(l.edges, link{from: from, to: to})
	return len(l.edges) - 1
}

// Build implements Builder.
func (l *Layered) Build() (*Result, error) {
	for i, e := range l.edges {
		if e.from < 0 || e.from >= len(l.nodes) || e.to < 0 || e.to >= len(l.nodes) {
			return nil, fmt.Errorf("edge %d (%d -> %d): %w", i, e.from, e.to, ErrUnknownNode)
		}
	}
	res := &Result{
		Coords:    make([]Point, len(l.nodes)),
		Waypoints: make([][]Point, len(l.edges)),
	}
	if len(l.nodes) == 0 {
		return res, nil
	}

	layer := l.assignLayers()
	layers := make([][]int, 0)
	for n, d := range layer {
		for len(layers) <= d {
			layers = append(layers, nil)
		}
		layers[d] = append(layers[d], n)
	}

	// Row extents.
	rowWidth := make([]float64, len(layers))
	rowHeight := make([]float64, len(layers))
	for d, row := range layers {
		for i, n := range row {
			if i > 0 {
				rowWidth[d] += l.opts.NodeSpacing
			}
			rowWidth[d] += l.nodes[n].w
			rowHeight[d] = max(rowHeight[d], l.nodes[n].h)
		}
		res.Width = max(res.Width, rowWidth[d])
	}

	y := 0.0
	for d, row := range layers {
		x := (res.Width - rowWidth[d]) / 2
		for _, n := range row {
			res.Coords[n] = Point{X: x, Y: y}
			x += l.nodes[n].w + l.opts.NodeSpacing
		}
		y += rowHeight[d]
		if d < len(layers)-1 {
			y += l.opts.LayerSpacing
		}
	}
	res.Height = y

	lane := res.Width + l.opts.NodeSpacing/2
	backEdges := false
	for i, e := range l.edges {
		src, dst := res.Coords[e.from], res.Coords[e.to]
		out := Point{X: src.X + l.nodes[e.from].w/2, Y: src.Y + l.nodes[e.from].h}
		in := Point{X: dst.X + l.nodes[e.to].w/2, Y: dst.Y}

		if layer[e.to] > layer[e.from] {
			res.Waypoints[i] = []Point{out, in}
			continue
		}

		backEdges = true
		gap := l.opts.LayerSpacing / 2
		res.Waypoints[i] = []Point{
			out,
			{X: out.X, Y: out.Y + gap},
			{X: lane, Y: out.Y + gap},
			{X: lane, Y: in.Y - gap},
			{X: in.X, Y: in.Y - gap},
			in,
		}
	}
	if backEdges {
		res.Width = lane + l.opts.NodeSpacing/2
	}
	return res, nil
}

// assignLayers returns the breadth-first depth of every node from node 0.
// Nodes the root cannot reach go on layer 0.
func (l *Layered) assignLayers() []int {
	adj := make([][]int, len(l.nodes))
	for _, e := range l.edges {
		adj[e.from] = append(adj[e.from], e.to)
	}

	layer := make([]int, len(l.nodes))
	seen := make([]bool, len(l.nodes))
	seen[0] = true
	queue := []int{0}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range adj[n] {
			if seen[m] {
				continue
			}
			seen[m] = true
			layer[m] = layer[n] + 1
			queue = append(queue, m)
		}
	}
	return layer
}
