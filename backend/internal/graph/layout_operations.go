package graph

import (
	"context"
	"time"

	apperrors "teamgraph/backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Analysis Result Operations
// ============================================================================

// SaveLayout writes one analysis run's per-node attributes onto the users
// and records the run
func (r *Repository) SaveLayout(ctx context.Context, teamID, runID string, nodes []*Node, edgeCount int) error {
	now := time.Now().UTC().Format(time.RFC3339)

	rows := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, map[string]interface{}{
			"id":     n.ID,
			"label":  n.Label,
			"score":  n.Score,
			"degree": n.Degree,
			"x":      n.Position.X,
			"y":      n.Position.Y,
		})
	}

	query := `
		MERGE (run:AnalysisRun {id: $runID})
		SET run.team_id = $teamID,
		    run.created_at = datetime($now),
		    run.nodes = size($rows),
		    run.edges = $edgeCount
		WITH run
		UNWIND $rows as row
		MATCH (u:User {id: row.id, team_id: $teamID})
		SET u.label = row.label,
		    u.score = row.score,
		    u.degree_centrality = row.degree,
		    u.x = row.x,
		    u.y = row.y,
		    u.run_id = $runID,
		    u.layout_updated_at = datetime($now)
	`

	if err := r.runWrite(ctx, "save layout", query, map[string]interface{}{
		"runID":     runID,
		"teamID":    teamID,
		"rows":      rows,
		"edgeCount": edgeCount,
		"now":       now,
	}); err != nil {
		return err
	}

	r.logger.Info("Layout saved",
		zap.String("team_id", teamID),
		zap.String("run_id", runID),
		zap.Int("nodes", len(nodes)),
	)
	return nil
}

// LoadLayout returns the most recently saved attributes for a team's users
func (r *Repository) LoadLayout(ctx context.Context, teamID string) ([]LayoutRecord, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {team_id: $teamID})
		WHERE u.run_id IS NOT NULL
		RETURN u.id as id, u.name as name, u.label as label, u.score as score,
		       u.degree_centrality as degree, u.x as x, u.y as y,
		       u.run_id as run_id, u.layout_updated_at as updated_at
		ORDER BY id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"teamID": teamID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("load layout", err)
	}

	var records []LayoutRecord
	for result.Next(ctx) {
		record := result.Record()
		records = append(records, LayoutRecord{
			Node: Node{
				ID:     getStringFromRecord(record, "id"),
				Name:   getStringFromRecord(record, "name"),
				Label:  getStringFromRecord(record, "label"),
				Score:  getFloat64FromRecord(record, "score"),
				Degree: getFloat64FromRecord(record, "degree"),
				Position: Position{
					X: getFloat64FromRecord(record, "x"),
					Y: getFloat64FromRecord(record, "y"),
				},
			},
			RunID:     getStringFromRecord(record, "run_id"),
			UpdatedAt: getTimeFromRecord(record, "updated_at"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("load layout", err)
	}

	if len(records) == 0 {
		return nil, apperrors.NewGraphTeamNotFound(teamID)
	}
	return records, nil
}
