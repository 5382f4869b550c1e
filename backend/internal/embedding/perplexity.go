package embedding

import (
	"math"
)

const (
	// DefaultPerplexity is the target effective neighbourhood size
	DefaultPerplexity = 30.0
	// EntropyTolerance bounds |H - log(perplexity)| for the beta search
	EntropyTolerance = 1e-4
	// MaxBetaTries caps the binary search per row
	MaxBetaTries = 50
	// probabilityFloor keeps log terms finite
	probabilityFloor = 1e-100
	// entropyCutoff skips negligible terms in the row entropy
	entropyCutoff = 1e-7
)

// NeighborProbabilities converts flat n×n squared distances into the
// symmetric joint probability matrix P. Each row's Gaussian bandwidth is
// found by binary search so the row entropy matches log(perplexity).
// Rows are calibrated in parallel.
func NeighborProbabilities(dists []float64, n int, perplexity, tol float64) []float64 {
	target := math.Log(perplexity)
	cond := make([]float64, n*n)

	parallelRows(n, 0, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			calibrateRow(dists[i*n:(i+1)*n], i, target, tol, cond[i*n:(i+1)*n])
		}
	})

	p := make([]float64, n*n)
	n2 := float64(2 * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p[i*n+j] = math.Max((cond[i*n+j]+cond[j*n+i])/n2, probabilityFloor)
		}
	}
	return p
}

// calibrateRow fills row with the conditional probabilities of point i and
// returns the beta it settled on and the row's entropy.
func calibrateRow(dist []float64, i int, target, tol float64, row []float64) (beta, entropy float64) {
	betaMin := math.Inf(-1)
	betaMax := math.Inf(1)
	beta = 1

	for try := 0; try < MaxBetaTries; try++ {
		var sum float64
		for j, d := range dist {
			pj := 0.0
			if j != i {
				pj = math.Exp(-d * beta)
			}
			row[j] = pj
			sum += pj
		}

		entropy = 0
		for j := range row {
			pj := 0.0
			if sum != 0 {
				pj = row[j] / sum
			}
			row[j] = pj
			if pj > entropyCutoff {
				entropy -= pj * math.Log(pj)
			}
		}

		if entropy > target {
			// Too flat: sharpen the kernel
			betaMin = beta
			if math.IsInf(betaMax, 1) {
				beta *= 2
			} else {
				beta = (beta + betaMax) / 2
			}
		} else {
			betaMax = beta
			if math.IsInf(betaMin, -1) {
				beta /= 2
			} else {
				beta = (beta + betaMin) / 2
			}
		}

		if math.Abs(entropy-target) < tol {
			break
		}
	}
	return beta, entropy
}
