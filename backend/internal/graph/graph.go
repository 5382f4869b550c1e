package graph

import (
	"fmt"
	"sort"
)

// Graph is an undirected weighted graph over string node IDs. Nodes keep
// insertion order; there is at most one edge per unordered pair.
type Graph struct {
	nodes []*Node
	index map[string]int
	adj   map[string]map[string]float64
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		adj:   make(map[string]map[string]float64),
	}
}

// AddNode adds a node whose label starts as its own ID. Adding an existing
// ID returns the existing node.
func (g *Graph) AddNode(id, name string) *Node {
	if i, ok := g.index[id]; ok {
		return g.nodes[i]
	}
	n := &Node{ID: id, Name: name, Label: id}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.adj[id] = make(map[string]float64)
	return n
}

// SetEdge sets the weight of the edge between a and b, replacing any
// previous weight. Both nodes must exist.
func (g *Graph) SetEdge(a, b string, weight float64) error {
	if a == b {
		return fmt.Errorf("self edge on %s", a)
	}
	if _, ok := g.index[a]; !ok {
		return fmt.Errorf("unknown node: %s", a)
	}
	if _, ok := g.index[b]; !ok {
		return fmt.Errorf("unknown node: %s", b)
	}
	if weight < 0 {
		return fmt.Errorf("negative weight %v on %s-%s", weight, a, b)
	}
	g.adj[a][b] = weight
	g.adj[b][a] = weight
	return nil
}

// Order returns the number of nodes
func (g *Graph) Order() int {
	return len(g.nodes)
}

// Size returns the number of edges
func (g *Graph) Size() int {
	total := 0
	for _, nbrs := range g.adj {
		total += len(nbrs)
	}
	return total / 2
}

// Node returns the node with the given ID, or nil
func (g *Graph) Node(id string) *Node {
	if i, ok := g.index[id]; ok {
		return g.nodes[i]
	}
	return nil
}

// Nodes returns the nodes in insertion order. The slice is a copy; the
// nodes are shared.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeIDs returns node IDs in insertion order
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.ID
	}
	return out
}

// Neighbors returns the open neighborhood of id, sorted
func (g *Graph) Neighbors(id string) []string {
	nbrs := g.adj[id]
	out := make([]string, 0, len(nbrs))
	for n := range nbrs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// HasEdge reports whether a and b are adjacent
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Weight returns the edge weight between a and b
func (g *Graph) Weight(a, b string) (float64, bool) {
	w, ok := g.adj[a][b]
	return w, ok
}

// Edges returns every edge once, ordered by node insertion order
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.Size())
	for i, n := range g.nodes {
		for _, other := range g.Neighbors(n.ID) {
			if g.index[other] <= i {
				continue
			}
			out = append(out, Edge{Source: n.ID, Target: other, Weight: g.adj[n.ID][other]})
		}
	}
	return out
}

// NormalizeDegrees sets each node's Degree to deg/(n-1). A graph with a
// single node gets 0.
func (g *Graph) NormalizeDegrees() {
	denom := float64(len(g.nodes) - 1)
	for _, n := range g.nodes {
		if denom <= 0 {
			n.Degree = 0
			continue
		}
		n.Degree = float64(len(g.adj[n.ID])) / denom
	}
}
