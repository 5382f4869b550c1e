package analysis

import (
	"context"

	"teamgraph/backend/internal/graph"
	apperrors "teamgraph/backend/pkg/errors"

	"go.uber.org/zap"
)

// Store is the persistence the service needs. *graph.Repository satisfies it.
type Store interface {
	LoadTeamUsers(ctx context.Context, teamID string) ([]graph.User, error)
	LoadTeamThreads(ctx context.Context, teamID string) ([]graph.Thread, error)
	SaveLayout(ctx context.Context, teamID, runID string, nodes []*graph.Node, edgeCount int) error
	LoadLayout(ctx context.Context, teamID string) ([]graph.LayoutRecord, error)
}

// Service loads a team snapshot, analyses it and stores the result
type Service struct {
	store    Store
	analyzer *Analyzer
	logger   *zap.Logger
}

// NewService wires a store to an analyzer
func NewService(store Store, analyzer *Analyzer) *Service {
	return &Service{
		store:    store,
		analyzer: analyzer,
		logger:   analyzer.logger,
	}
}

// AnalyzeTeam runs one pass over the team's current snapshot and persists
// labels, scores and positions
func (s *Service) AnalyzeTeam(ctx context.Context, teamID string) (*Result, error) {
	users, err := s.store.LoadTeamUsers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NewGraphTeamNotFound(teamID)
	}

	threads, err := s.store.LoadTeamThreads(ctx, teamID)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.Run(ctx, users, threads)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveLayout(ctx, teamID, result.RunID, result.Nodes, len(result.Edges)); err != nil {
		s.logger.Error("Failed to save layout",
			zap.String("team_id", teamID),
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

// Layout returns the last stored layout for a team
func (s *Service) Layout(ctx context.Context, teamID string) ([]graph.LayoutRecord, error) {
	return s.store.LoadLayout(ctx, teamID)
}
