package graph

import (
	"context"
	"sort"
	"time"

	apperrors "teamgraph/backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// User Operations
// ============================================================================

// UpsertUser creates or updates a team member
func (r *Repository) UpsertUser(ctx context.Context, teamID, userID, name string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MERGE (u:User {id: $userID})
		ON CREATE SET
			u.team_id = $teamID,
			u.name = $name,
			u.first_seen = datetime($now),
			u.last_seen = datetime($now)
		ON MATCH SET
			u.team_id = $teamID,
			u.last_seen = datetime($now),
			u.name = CASE WHEN $name <> '' THEN $name ELSE u.name END
	`

	return r.runWrite(ctx, "upsert user", query, map[string]interface{}{
		"userID": userID,
		"teamID": teamID,
		"name":   name,
		"now":    now,
	})
}

// LoadTeamUsers returns every user of a team with their outgoing mention
// counts, ordered by ID
func (r *Repository) LoadTeamUsers(ctx context.Context, teamID string) ([]User, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {team_id: $teamID})
		OPTIONAL MATCH (u)-[m:MENTIONED]->(other:User {team_id: $teamID})
		RETURN u.id as id, u.name as name,
		       collect(CASE WHEN other IS NULL THEN NULL ELSE {id: other.id, count: m.count} END) as mentions
		ORDER BY id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"teamID": teamID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("load team users", err)
	}

	var users []User
	for result.Next(ctx) {
		record := result.Record()
		u := User{
			ID:     getStringFromRecord(record, "id"),
			Name:   getStringFromRecord(record, "name"),
			TeamID: teamID,
		}
		for _, m := range getMapSliceFromRecord(record, "mentions") {
			otherID := getStringFromMap(m, "id")
			count := getIntFromMap(m, "count")
			if otherID == "" || count <= 0 {
				continue
			}
			if u.Mentions == nil {
				u.Mentions = make(map[string]int)
			}
			u.Mentions[otherID] = count
		}
		users = append(users, u)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("load team users", err)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	r.logger.Debug("Loaded team users",
		zap.String("team_id", teamID),
		zap.Int("count", len(users)),
	)
	return users, nil
}

// DeleteTeam removes a team's users, threads and analysis runs
func (r *Repository) DeleteTeam(ctx context.Context, teamID string) error {
	query := `
		MATCH (n)
		WHERE (n:User OR n:Thread OR n:AnalysisRun) AND n.team_id = $teamID
		DETACH DELETE n
	`
	if err := r.runWrite(ctx, "delete team", query, map[string]interface{}{"teamID": teamID}); err != nil {
		return err
	}
	r.logger.Info("Deleted team", zap.String("team_id", teamID))
	return nil
}
