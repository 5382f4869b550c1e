// Package analysis runs one analytics pass over a team snapshot: edge
// weights, then communities, centrality and layout over the same graph.
package analysis

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"teamgraph/backend/internal/centrality"
	"teamgraph/backend/internal/community"
	"teamgraph/backend/internal/embedding"
	"teamgraph/backend/internal/graph"
	"teamgraph/backend/internal/weights"
	apperrors "teamgraph/backend/pkg/errors"
	"teamgraph/backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Options configure an Analyzer. Zero values select the defaults.
type Options struct {
	LabelIterations  int
	TSNESteps        int
	Perplexity       float64
	AdjustmentFactor float64
	MinX             *float64
	MinY             *float64
	// Seed makes a run reproducible. 0 seeds from the clock.
	Seed uint64
}

// Result is everything one pass produces for the visualisation layer
type Result struct {
	RunID       string              `json:"run_id"`
	Nodes       []*graph.Node       `json:"nodes"`
	Edges       []weights.Triple    `json:"edges"`
	Communities map[string][]string `json:"communities"`
	MeanScore   float64             `json:"mean_score"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"duration"`

	graph *graph.Graph
}

// Graph returns the analysed graph
func (r *Result) Graph() *graph.Graph {
	return r.graph
}

// Analyzer runs analysis passes
type Analyzer struct {
	opts   Options
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil logger uses the global one.
func NewAnalyzer(opts Options, log *zap.Logger) *Analyzer {
	if opts.LabelIterations <= 0 {
		opts.LabelIterations = community.DefaultIterations
	}
	return &Analyzer{
		opts:   opts,
		logger: logger.Component("analysis", log),
	}
}

// BuildGraph derives edges for users and returns the weighted graph with
// normalised degrees, together with the flat edge list
func BuildGraph(users []graph.User, threads []graph.Thread) (*graph.Graph, *weights.Edges, error) {
	index := weights.NewThreadRelationIndex(threads)
	edges, err := weights.EdgesForUsers(users, weights.Dependencies{
		UsersByID:             weights.UsersByID(users),
		ThreadRelationForUser: index.ForUser,
	})
	if err != nil {
		return nil, nil, err
	}

	g := graph.NewGraph()
	for _, u := range users {
		g.AddNode(u.ID, u.Name)
	}
	for _, e := range edges.List {
		if err := g.SetEdge(e.A, e.B, e.Weight); err != nil {
			return nil, nil, apperrors.NewAnalysisFailed("build graph", err)
		}
	}
	g.NormalizeDegrees()
	return g, edges, nil
}

// Run analyses one snapshot. Label propagation, centrality and layout run
// concurrently; each writes only its own node attribute.
func (a *Analyzer) Run(ctx context.Context, users []graph.User, threads []graph.Thread) (*Result, error) {
	started := time.Now()
	runID := uuid.New().String()
	log := a.logger.With(zap.String("run_id", runID))

	g, edges, err := BuildGraph(users, threads)
	if err != nil {
		return nil, err
	}
	log.Info("Graph built",
		zap.Int("nodes", g.Order()),
		zap.Int("edges", g.Size()),
		zap.Int("threads", len(threads)),
	)

	seed := a.opts.Seed
	if seed == 0 {
		seed = uint64(started.UnixNano())
	}

	var labels community.Labeling
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		rng := rand.New(rand.NewPCG(seed, 1))
		labels = community.Propagate(g, rng, a.opts.LabelIterations)
		return egCtx.Err()
	})
	eg.Go(func() error {
		centrality.NewRanking(g).Apply(g)
		return egCtx.Err()
	})
	eg.Go(func() error {
		embedding.Layout(g, embedding.Options{
			Steps:            a.opts.TSNESteps,
			Perplexity:       a.opts.Perplexity,
			AdjustmentFactor: a.opts.AdjustmentFactor,
			MinX:             a.opts.MinX,
			MinY:             a.opts.MinY,
			Source:           rand.NewPCG(seed, 2),
			Logger:           log,
		})
		return egCtx.Err()
	})

	if err := eg.Wait(); err != nil {
		return nil, apperrors.NewContextCancelled("analysis run", err)
	}

	nodes := g.Nodes()
	scores := make([]float64, len(nodes))
	for i, n := range nodes {
		n.Label = labels[n.ID]
		scores[i] = n.Score
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	result := &Result{
		RunID:       runID,
		Nodes:       nodes,
		Edges:       edges.List,
		Communities: community.Communities(labels),
		StartedAt:   started,
		Duration:    time.Since(started),
		graph:       g,
	}
	if len(scores) > 0 {
		result.MeanScore = stat.Mean(scores, nil)
	}

	log.Info("Analysis finished",
		zap.Int("communities", len(result.Communities)),
		zap.Float64("mean_score", result.MeanScore),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
