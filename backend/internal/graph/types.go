package graph

import "time"

// ============================================================================
// Snapshot Types
// ============================================================================

// User represents a team member as read from the store
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	TeamID string `json:"team_id,omitempty"`
	// Mentions maps another user's ID to how often this user mentioned them.
	// May be nil.
	Mentions map[string]int `json:"mentions,omitempty"`
}

// MentionsOf returns how often u mentioned otherID. Safe on a nil map.
func (u User) MentionsOf(otherID string) int {
	return u.Mentions[otherID]
}

// Reply is one reply inside a thread
type Reply struct {
	MessageID string    `json:"message_id,omitempty"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread is a root post plus its replies in chronological order
type Thread struct {
	ID           string  `json:"id"`
	RootAuthorID string  `json:"root_author_id"`
	Replies      []Reply `json:"replies,omitempty"`
}

// Participants returns the distinct user IDs that appear in the thread,
// root author first, then repliers in order of first appearance.
func (t Thread) Participants() []string {
	seen := make(map[string]struct{}, len(t.Replies)+1)
	out := make([]string, 0, len(t.Replies)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(t.RootAuthorID)
	for _, r := range t.Replies {
		add(r.UserID)
	}
	return out
}

// ============================================================================
// Analysis Types
// ============================================================================

// Position is a 2-D layout coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one user in the analysed graph. Label, Score and Position are
// each owned by a single analysis component.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Degree   float64  `json:"degree_centrality"`
	Label    string   `json:"label"`
	Score    float64  `json:"score"`
	Position Position `json:"position"`
}

// Edge is an undirected weighted edge
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// LayoutRecord is a persisted analysis result for one user
type LayoutRecord struct {
	Node
	RunID     string    `json:"run_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
