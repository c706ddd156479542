// Package layout turns a function's control-flow graph into node boxes and
// edge polylines.
//
// Placement itself is delegated to a Builder. Run feeds the builder one node
// per reachable block and one edge per successor, then maps the builder's
// integer ids back to block names.
package layout

import (
	"errors"
	"fmt"

	"github.com/triskellib/vscode/pkg/cfg"
)

// ErrEmptyFunction is returned by Run when the function has no root block.
var ErrEmptyFunction = errors.New("function has no blocks to lay out")

// ErrUnknownNode is returned by a builder when an edge names a node id it
// never handed out.
var ErrUnknownNode = errors.New("unknown node id")

// Point is a coordinate in layout space. Y grows downwards.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Result is what a Builder produces. Coords is indexed by node id and holds
// the top-left corner of each node; Waypoints is indexed by edge id.
type Result struct {
	Width     float64
	Height    float64
	Coords    []Point
	Waypoints [][]Point
}

// Builder is the contract of a graph placement engine. Ids are dense and
// allocated in call order starting at 0.
type Builder interface {
	MakeNode(height, width float64) int
	MakeEdge(from, to int) int
	Build() (*Result, error)
}

// Node is a placed block.
type Node struct {
	Block  string  `json:"block" msgpack:"block"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

// EdgePath is a routed successor edge.
type EdgePath struct {
	From   string       `json:"from" msgpack:"from"`
	To     string       `json:"to" msgpack:"to"`
	Type   cfg.EdgeType `json:"type" msgpack:"type"`
	Points []Point      `json:"points" msgpack:"points"`
}

// FunctionLayout is the placed graph of one function.
type FunctionLayout struct {
	Function string     `json:"function" msgpack:"function"`
	Width    float64    `json:"width" msgpack:"width"`
	Height   float64    `json:"height" msgpack:"height"`
	Nodes    []Node     `json:"nodes" msgpack:"nodes"`
	Edges    []EdgePath `json:"edges" msgpack:"edges"`
}

// Node returns the placed node for a block name.
func (l *FunctionLayout) Node(block string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.Block == block {
			return n, true
		}
	}
	return Node{}, false
}

// Run lays out the blocks of fn that are reachable from its root. Edges to
// unreachable or undefined blocks are left out.
func Run(fn *cfg.Function, sizer Sizer, b Builder) (*FunctionLayout, error) {
	order := fn.Reachable()
	if len(order) == 0 {
		return nil, fmt.Errorf("%s: %w", fn.Name, ErrEmptyFunction)
	}

	ids := make(map[string]int, len(order))
	blocks := make([]*cfg.BasicBlock, 0, len(order))
	for _, name := range order {
		bb, err := fn.Block(name)
		if err != nil {
			return nil, err
		}
		w, h := sizer.Size(bb)
		ids[name] = b.MakeNode(h, w)
		blocks = append(blocks, bb)
	}

	var edges []cfg.Edge
	for _, bb := range blocks {
		for _, e := range bb.Successors {
			to, ok := ids[e.To]
			if !ok {
				continue
			}
			b.MakeEdge(ids[bb.Name], to)
			edges = append(edges, e)
		}
	}

	res, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", fn.Name, err)
	}
	if len(res.Coords) != len(blocks) || len(res.Waypoints) != len(edges) {
		return nil, fmt.Errorf("layout %s: builder returned %d nodes and %d edges, want %d and %d",
			fn.Name, len(res.Coords), len(res.Waypoints), len(blocks), len(edges))
	}

	out := &FunctionLayout{
		Function: fn.Name,
		Width:    res.Width,
		Height:   res.Height,
		Nodes:    make([]Node, len(blocks)),
		Edges:    make([]EdgePath, len(edges)),
	}
	for i, bb := range blocks {
		w, h := sizer.Size(bb)
		out.Nodes[i] = Node{Block: bb.Name, X: res.Coords[i].X, Y: res.Coords[i].Y, Width: w, Height: h}
	}
	for i, e := range edges {
		out.Edges[i] = EdgePath{From: e.From, To: e.To, Type: e.Type, Points: res.Waypoints[i]}
	}
	return out, nil
}
