// Package embedding lays a graph out in 2-D with t-SNE over the nodes'
// adjacency vectors, so nodes sharing many neighbours land close together.
package embedding

import (
	"sort"

	"teamgraph/backend/internal/graph"

	"gonum.org/v1/gonum/mat"
)

// Vectorize represents each node as a binary adjacency vector over the
// canonical (sorted) node order. Row i belongs to ids[i]; the diagonal is 0.
// Returns a nil matrix for an empty graph.
func Vectorize(g *graph.Graph) ([]string, *mat.Dense) {
	ids := g.NodeIDs()
	sort.Strings(ids)
	n := len(ids)
	if n == 0 {
		return ids, nil
	}

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	x := mat.NewDense(n, n, nil)
	for i, id := range ids {
		for _, nbr := range g.Neighbors(id) {
			x.Set(i, index[nbr], 1)
		}
	}
	return ids, x
}

// SquaredDistances returns the flat n×n matrix of squared Euclidean
// distances between the rows of x, computed from the Gram matrix.
func SquaredDistances(x *mat.Dense) []float64 {
	n, _ := x.Dims()
	var gram mat.Dense
	gram.Mul(x, x.T())

	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		gii := gram.At(i, i)
		for j := i + 1; j < n; j++ {
			v := gii + gram.At(j, j) - 2*gram.At(i, j)
			if v < 0 {
				v = 0
			}
			d[i*n+j] = v
			d[j*n+i] = v
		}
	}
	return d
}
