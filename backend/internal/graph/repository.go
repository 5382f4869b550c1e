package graph

import (
	"context"
	"fmt"

	apperrors "teamgraph/backend/pkg/errors"
	"teamgraph/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Repository handles all Neo4j database operations for team snapshots
// and analysis results.
//
// Schema:
//
//	(:User {id, name, team_id, label, score, x, y, degree_centrality, run_id})
//	(:User)-[:MENTIONED {count}]->(:User)
//	(:User)-[:STARTED]->(:Thread {id, team_id})
//	(:User)-[:REPLIED_IN {message_id, timestamp}]->(:Thread)
//	(:AnalysisRun {id, team_id, created_at, nodes, edges})
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Component("graph", nil),
	}
}

// Connect creates a driver for uri and verifies connectivity
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// EnsureConstraints creates the uniqueness constraints the upserts rely on
func (r *Repository) EnsureConstraints(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT thread_id IF NOT EXISTS FOR (t:Thread) REQUIRE t.id IS UNIQUE",
		"CREATE CONSTRAINT analysis_run_id IF NOT EXISTS FOR (a:AnalysisRun) REQUIRE a.id IS UNIQUE",
	}
	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return apperrors.NewGraphQueryFailed("ensure constraints", err)
		}
	}

	r.logger.Debug("Constraints ensured", zap.Int("count", len(statements)))
	return nil
}

// runWrite executes a write query and consumes the result
func (r *Repository) runWrite(ctx context.Context, name, query string, params map[string]interface{}) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return apperrors.NewGraphQueryFailed(name, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return apperrors.NewGraphQueryFailed(name, fmt.Errorf("consume: %w", err))
	}
	return nil
}
