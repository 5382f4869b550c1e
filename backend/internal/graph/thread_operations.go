package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "teamgraph/backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Thread Operations
// ============================================================================

// RecordThread stores a thread with its root author and replies. Replies are
// keyed by message ID, so recording the same thread twice is a no-op and a
// reply never moves to another user.
func (r *Repository) RecordThread(ctx context.Context, teamID string, thread Thread) error {
	if thread.ID == "" || thread.RootAuthorID == "" {
		return fmt.Errorf("thread requires an id and a root author")
	}

	replies := make([]map[string]interface{}, 0, len(thread.Replies))
	for _, reply := range thread.Replies {
		if reply.MessageID == "" {
			return fmt.Errorf("reply by %s in thread %s has no message id", reply.UserID, thread.ID)
		}
		replies = append(replies, map[string]interface{}{
			"messageID": reply.MessageID,
			"userID":    reply.UserID,
			"timestamp": reply.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	query := `
		MATCH (root:User {id: $rootAuthorID})
		MERGE (t:Thread {id: $threadID})
		ON CREATE SET t.team_id = $teamID
		MERGE (root)-[:STARTED]->(t)
		WITH t
		UNWIND $replies as reply
		MATCH (u:User {id: reply.userID})
		MERGE (u)-[ri:REPLIED_IN {message_id: reply.messageID}]->(t)
		ON CREATE SET ri.timestamp = datetime(reply.timestamp)
	`

	return r.runWrite(ctx, "record thread", query, map[string]interface{}{
		"threadID":     thread.ID,
		"teamID":       teamID,
		"rootAuthorID": thread.RootAuthorID,
		"replies":      replies,
	})
}

// LoadTeamThreads returns all threads of a team with replies ordered by time
func (r *Repository) LoadTeamThreads(ctx context.Context, teamID string) ([]Thread, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (root:User)-[:STARTED]->(t:Thread {team_id: $teamID})
		OPTIONAL MATCH (u:User)-[ri:REPLIED_IN]->(t)
		RETURN t.id as id, root.id as root_author_id,
		       collect(CASE WHEN u IS NULL THEN NULL ELSE {message_id: ri.message_id, user_id: u.id, timestamp: ri.timestamp} END) as replies
		ORDER BY id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"teamID": teamID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("load team threads", err)
	}

	var threads []Thread
	for result.Next(ctx) {
		record := result.Record()
		th := Thread{
			ID:           getStringFromRecord(record, "id"),
			RootAuthorID: getStringFromRecord(record, "root_author_id"),
		}
		for _, m := range getMapSliceFromRecord(record, "replies") {
			th.Replies = append(th.Replies, Reply{
				MessageID: getStringFromMap(m, "message_id"),
				UserID:    getStringFromMap(m, "user_id"),
				Timestamp: getTimeFromMap(m, "timestamp"),
			})
		}
		sort.SliceStable(th.Replies, func(i, j int) bool {
			return th.Replies[i].Timestamp.Before(th.Replies[j].Timestamp)
		})
		threads = append(threads, th)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("load team threads", err)
	}

	r.logger.Debug("Loaded team threads",
		zap.String("team_id", teamID),
		zap.Int("count", len(threads)),
	)
	return threads, nil
}
