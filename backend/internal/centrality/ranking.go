// Package centrality turns closeness and degree centrality into a single
// percentile score per node.
package centrality

import (
	"sort"

	"teamgraph/backend/internal/graph"
)

// PercentileRanks sorts nodes by value ascending and gives each its index
// divided by the node count. The lowest value gets 0 and nothing reaches 1.
// Equal values are ordered by ID.
func PercentileRanks(values map[string]float64) map[string]float64 {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		vi, vj := values[ids[i]], values[ids[j]]
		if vi != vj {
			return vi < vj
		}
		return ids[i] < ids[j]
	})

	n := float64(len(ids))
	out := make(map[string]float64, len(ids))
	for i, id := range ids {
		out[id] = float64(i) / n
	}
	return out
}

// Ranking is the percentile ranking of one graph snapshot. Build it once
// with NewRanking and reuse it for every node lookup.
type Ranking struct {
	closeness    map[string]float64
	closenessPct map[string]float64
	degreePct    map[string]float64
	composite    map[string]float64
	score        map[string]float64
}

// NewRanking computes closeness, ranks it alongside the nodes' normalised
// degree, blends both percentiles equally and ranks the blend again.
// Node degrees must already be normalised (graph.NormalizeDegrees).
func NewRanking(g *graph.Graph) *Ranking {
	closeness := Closeness(g)

	degree := make(map[string]float64, g.Order())
	for _, n := range g.Nodes() {
		degree[n.ID] = n.Degree
	}

	r := &Ranking{
		closeness:    closeness,
		closenessPct: PercentileRanks(closeness),
		degreePct:    PercentileRanks(degree),
		composite:    make(map[string]float64, len(closeness)),
	}
	for id := range closeness {
		r.composite[id] = 0.5*r.closenessPct[id] + 0.5*r.degreePct[id]
	}
	r.score = PercentileRanks(r.composite)
	return r
}

// Score returns the final composite percentile in [0, 1)
func (r *Ranking) Score(id string) float64 {
	return r.score[id]
}

// Closeness returns the raw closeness centrality
func (r *Ranking) Closeness(id string) float64 {
	return r.closeness[id]
}

// ClosenessPercentile returns the closeness percentile
func (r *Ranking) ClosenessPercentile(id string) float64 {
	return r.closenessPct[id]
}

// DegreePercentile returns the degree percentile
func (r *Ranking) DegreePercentile(id string) float64 {
	return r.degreePct[id]
}

// Composite returns the blended, not yet re-ranked, percentile
func (r *Ranking) Composite(id string) float64 {
	return r.composite[id]
}

// Len returns the number of ranked nodes
func (r *Ranking) Len() int {
	return len(r.score)
}

// Apply writes every node's score
func (r *Ranking) Apply(g *graph.Graph) {
	for _, n := range g.Nodes() {
		n.Score = r.score[n.ID]
	}
}
