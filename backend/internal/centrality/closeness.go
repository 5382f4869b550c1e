package centrality

import (
	"math"
	"runtime"

	"teamgraph/backend/internal/graph"

	"golang.org/x/sync/errgroup"
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// toWeighted copies g into a gonum weighted undirected graph. Node i of
// the result is g.Nodes()[i].
func toWeighted(g *graph.Graph) (*simple.WeightedUndirectedGraph, []string) {
	ids := g.NodeIDs()
	index := make(map[string]int64, len(ids))
	wg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i, id := range ids {
		index[id] = int64(i)
		wg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		wg.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(index[e.Source]),
			T: simple.Node(index[e.Target]),
			W: e.Weight,
		})
	}
	return wg, ids
}

// Closeness returns, per node, the inverse of the summed weighted shortest
// path distance to every reachable node. Unreachable nodes are left out of
// the sum; a node that reaches nothing scores 0.
func Closeness(g *graph.Graph) map[string]float64 {
	wg, ids := toWeighted(g)
	sums := make([]float64, len(ids))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range ids {
		eg.Go(func() error {
			sums[i] = distanceSum(wg, int64(i), len(ids))
			return nil
		})
	}
	_ = eg.Wait()

	out := make(map[string]float64, len(ids))
	for i, id := range ids {
		if sums[i] > 0 {
			out[id] = 1 / sums[i]
		} else {
			out[id] = 0
		}
	}
	return out
}

func distanceSum(wg *simple.WeightedUndirectedGraph, from int64, n int) float64 {
	var source gonumgraph.Node = simple.Node(from)
	shortest := path.DijkstraFrom(source, wg)
	var sum float64
	for j := 0; j < n; j++ {
		if int64(j) == from {
			continue
		}
		d := shortest.WeightTo(int64(j))
		if math.IsInf(d, 1) {
			continue
		}
		sum += d
	}
	return sum
}
