package graph

import (
	"context"
	"time"
)

// ============================================================================
// User-to-User Relationship Operations
// ============================================================================

// RecordUserMention stores how often one user mentioned another in the
// latest snapshot. The stored count is replaced, not accumulated.
func (r *Repository) RecordUserMention(ctx context.Context, fromUserID, toUserID string, count int) error {
	if count <= 0 || fromUserID == toUserID {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (u1:User {id: $fromUserID})
		MATCH (u2:User {id: $toUserID})
		MERGE (u1)-[m:MENTIONED]->(u2)
		ON CREATE SET
			m.count = $count,
			m.first_mentioned = datetime($now),
			m.last_mentioned = datetime($now)
		ON MATCH SET
			m.count = $count,
			m.last_mentioned = datetime($now)
	`

	return r.runWrite(ctx, "record user mention", query, map[string]interface{}{
		"fromUserID": fromUserID,
		"toUserID":   toUserID,
		"count":      count,
		"now":        now,
	})
}

// RecordUserMentions records a user's whole mention map
func (r *Repository) RecordUserMentions(ctx context.Context, user User) error {
	for otherID, count := range user.Mentions {
		if err := r.RecordUserMention(ctx, user.ID, otherID, count); err != nil {
			return err
		}
	}
	return nil
}
