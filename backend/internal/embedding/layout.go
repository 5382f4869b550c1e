package embedding

import (
	"math/rand/v2"
	"time"

	"teamgraph/backend/internal/graph"
	"teamgraph/backend/pkg/logger"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// DefaultAdjustmentFactor scales the raw t-SNE coordinates to screen units
const DefaultAdjustmentFactor = 500.0

// Options configure a layout run. Zero values select the defaults.
type Options struct {
	Steps            int
	Perplexity       float64
	LearningRate     float64
	AdjustmentFactor float64
	// MinX and MinY, when set, translate the layout so its smallest
	// coordinate lands exactly there.
	MinX *float64
	MinY *float64
	// Source seeds the initial positions. Nil seeds from the clock.
	Source  rand.Source
	Workers int
	Logger  *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Steps <= 0 {
		o.Steps = DefaultSteps
	}
	if o.Perplexity <= 0 {
		o.Perplexity = DefaultPerplexity
	}
	if o.LearningRate <= 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.AdjustmentFactor == 0 {
		o.AdjustmentFactor = DefaultAdjustmentFactor
	}
	if o.Source == nil {
		seed := uint64(time.Now().UnixNano())
		o.Source = rand.NewPCG(seed, seed>>1|1)
	}
	o.Logger = logger.Component("embedding", o.Logger)
	return o
}

// Layout embeds g in the plane, writes each node's Position and returns
// the positions by node ID. A single node lands on the origin before
// scaling and translation.
func Layout(g *graph.Graph, opts Options) map[string]graph.Position {
	opts = opts.withDefaults()

	ids, x := Vectorize(g)
	n := len(ids)
	out := make(map[string]graph.Position, n)
	if n == 0 {
		return out
	}

	coords := make([]float64, n*Dimensions)
	if n > 1 {
		start := time.Now()
		p := NeighborProbabilities(SquaredDistances(x), n, opts.Perplexity, EntropyTolerance)
		run := NewTSNE(p, n, opts.LearningRate, opts.Source, opts.Workers)

		var cost float64
		for s := 0; s < opts.Steps; s++ {
			cost = run.Step()
			if (s+1)%250 == 0 {
				opts.Logger.Debug("t-SNE progress",
					zap.Int("step", s+1),
					zap.Float64("cost", cost),
				)
			}
		}
		copy(coords, run.Solution())

		opts.Logger.Debug("t-SNE finished",
			zap.Int("nodes", n),
			zap.Int("steps", opts.Steps),
			zap.Float64("cost", cost),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	postProcess(coords, opts.AdjustmentFactor, opts.MinX, opts.MinY)

	for i, id := range ids {
		pos := graph.Position{X: coords[i*Dimensions], Y: coords[i*Dimensions+1]}
		out[id] = pos
		if node := g.Node(id); node != nil {
			node.Position = pos
		}
	}
	return out
}

// postProcess scales coords by factor, then shifts each axis so its
// minimum equals the requested value when one is given
func postProcess(coords []float64, factor float64, minX, minY *float64) {
	floats.Scale(factor, coords)

	n := len(coords) / Dimensions
	if n == 0 {
		return
	}
	for d, target := range []*float64{minX, minY} {
		if target == nil {
			continue
		}
		axis := make([]float64, n)
		for i := range axis {
			axis[i] = coords[i*Dimensions+d]
		}
		shift := *target - floats.Min(axis)
		for i := 0; i < n; i++ {
			coords[i*Dimensions+d] += shift
		}
	}
}
