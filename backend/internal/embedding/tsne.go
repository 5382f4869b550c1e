package embedding

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Optimiser constants
const (
	Dimensions          = 2
	DefaultSteps        = 1000
	DefaultLearningRate = 10.0
	ExaggerationSteps   = 100
	Exaggeration        = 4.0
	MomentumSwitchStep  = 250
	InitialMomentum     = 0.5
	FinalMomentum       = 0.8
	MinGain             = 0.01
	InitialStdDev       = 1e-4
)

// TSNE is one optimisation run. Positions, displacements and gains are
// flat n×Dimensions arenas owned by the run.
type TSNE struct {
	n            int
	p            []float64
	learningRate float64
	workers      int

	step int

	y     []float64
	ystep []float64
	gains []float64

	// per-step scratch
	qu      []float64
	grad    []float64
	rowCost []float64
	rowQSum []float64
}

// NewTSNE prepares a run over the joint probabilities p (flat n×n) with
// positions drawn from N(0, InitialStdDev²).
func NewTSNE(p []float64, n int, learningRate float64, src rand.Source, workers int) *TSNE {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	t := &TSNE{
		n:            n,
		p:            p,
		learningRate: learningRate,
		workers:      workers,
		y:            make([]float64, n*Dimensions),
		ystep:        make([]float64, n*Dimensions),
		gains:        make([]float64, n*Dimensions),
		qu:           make([]float64, n*n),
		grad:         make([]float64, n*Dimensions),
		rowCost:      make([]float64, n),
		rowQSum:      make([]float64, n),
	}

	normal := distuv.Normal{Mu: 0, Sigma: InitialStdDev, Src: src}
	for i := range t.y {
		t.y[i] = normal.Rand()
		t.gains[i] = 1
	}
	return t
}

// Iterations returns how many steps have run
func (t *TSNE) Iterations() int {
	return t.step
}

// Solution returns the current positions, row-major n×Dimensions. The
// slice is owned by the run.
func (t *TSNE) Solution() []float64 {
	return t.y
}

// Gains returns the per-coordinate adaptive gains
func (t *TSNE) Gains() []float64 {
	return t.gains
}

// Step performs one gradient descent update and returns the cost before it
func (t *TSNE) Step() float64 {
	cost := t.costGrad()

	momentum := InitialMomentum
	if t.step >= MomentumSwitchStep {
		momentum = FinalMomentum
	}

	var mean [Dimensions]float64
	for i := 0; i < t.n; i++ {
		for d := 0; d < Dimensions; d++ {
			k := i*Dimensions + d
			g := t.grad[k]
			s := t.ystep[k]

			gain := t.gains[k]
			if sign(g) == sign(s) {
				gain *= 0.8
			} else {
				gain += 0.2
			}
			if gain < MinGain {
				gain = MinGain
			}
			t.gains[k] = gain

			next := momentum*s - t.learningRate*gain*g
			t.ystep[k] = next
			t.y[k] += next
			mean[d] += t.y[k]
		}
	}

	for d := range mean {
		mean[d] /= float64(t.n)
	}
	for i := 0; i < t.n; i++ {
		for d := 0; d < Dimensions; d++ {
			t.y[i*Dimensions+d] -= mean[d]
		}
	}

	t.step++
	return cost
}

// costGrad fills t.grad with the KL gradient and returns the cost
func (t *TSNE) costGrad() float64 {
	n := t.n
	y := t.y

	pmul := 1.0
	if t.step < ExaggerationSteps {
		pmul = Exaggeration
	}

	// Student-t affinities, unnormalised
	parallelRows(n, t.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var sum float64
			t.qu[i*n+i] = 0
			for j := i + 1; j < n; j++ {
				var dsum float64
				for d := 0; d < Dimensions; d++ {
					diff := y[i*Dimensions+d] - y[j*Dimensions+d]
					dsum += diff * diff
				}
				q := 1 / (1 + dsum)
				t.qu[i*n+j] = q
				t.qu[j*n+i] = q
				sum += 2 * q
			}
			t.rowQSum[i] = sum
		}
	})
	var qsum float64
	for _, s := range t.rowQSum {
		qsum += s
	}

	parallelRows(n, t.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var cost float64
			var gsum [Dimensions]float64
			for j := 0; j < n; j++ {
				qu := t.qu[i*n+j]
				q := probabilityFloor
				if qsum > 0 {
					q = math.Max(qu/qsum, probabilityFloor)
				}
				pij := t.p[i*n+j]
				cost -= pij * math.Log(q)
				premult := 4 * (pmul*pij - q) * qu
				for d := 0; d < Dimensions; d++ {
					gsum[d] += premult * (y[i*Dimensions+d] - y[j*Dimensions+d])
				}
			}
			for d := 0; d < Dimensions; d++ {
				t.grad[i*Dimensions+d] = gsum[d]
			}
			t.rowCost[i] = cost
		}
	})

	var cost float64
	for _, c := range t.rowCost {
		cost += c
	}
	return cost
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
