package weights

import (
	"encoding/json"
	"fmt"
	"sort"

	"teamgraph/backend/internal/graph"
	apperrors "teamgraph/backend/pkg/errors"
)

// EdgeWeight returns 1/(2*outgoing + 2*incoming + threadRelation), or 0
// when there is no interaction signal at all.
func EdgeWeight(outgoing, incoming, threadRelation int) float64 {
	denom := 2*outgoing + 2*incoming + threadRelation
	if denom == 0 {
		return 0
	}
	return 1 / float64(denom)
}

// Dependencies are the collaborators EdgesForUsers needs
type Dependencies struct {
	UsersByID             map[string]*graph.User
	ThreadRelationForUser func(userID string) ThreadRelation
}

// UsersByID builds the lookup for Dependencies
func UsersByID(users []graph.User) map[string]*graph.User {
	out := make(map[string]*graph.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out
}

// Triple is one edge in the flat list. It marshals as [idA, idB, weight].
type Triple struct {
	A      string
	B      string
	Weight float64
}

// MarshalJSON encodes the triple as a three element array
func (t Triple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.A, t.B, t.Weight})
}

// UnmarshalJSON decodes a [idA, idB, weight] array
func (t *Triple) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("edge triple needs 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &t.A); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &t.B); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &t.Weight)
}

// Edges is the result of EdgesForUsers
type Edges struct {
	// Lookup[a][b] == Lookup[b][a] == weight
	Lookup map[string]map[string]float64
	// List holds one triple per unordered pair
	List []Triple
}

// Weight returns the weight between a and b
func (e *Edges) Weight(a, b string) (float64, bool) {
	w, ok := e.Lookup[a][b]
	return w, ok
}

func (e *Edges) set(a, b string, w float64) {
	if e.Lookup[a] == nil {
		e.Lookup[a] = make(map[string]float64)
	}
	if e.Lookup[b] == nil {
		e.Lookup[b] = make(map[string]float64)
	}
	e.Lookup[a][b] = w
	e.Lookup[b][a] = w
	e.List = append(e.List, Triple{A: a, B: b, Weight: w})
}

// EdgesForUsers computes one edge for every unordered pair of distinct
// users with a nonzero mention or thread relationship. Partners missing
// from UsersByID are ignored. Missing dependencies fail before any work.
func EdgesForUsers(users []graph.User, deps Dependencies) (*Edges, error) {
	if deps.UsersByID == nil {
		return nil, apperrors.NewAnalysisContractViolation("UsersByID", "is nil")
	}
	if deps.ThreadRelationForUser == nil {
		return nil, apperrors.NewAnalysisContractViolation("ThreadRelationForUser", "is nil")
	}
	for id, u := range deps.UsersByID {
		if u == nil {
			return nil, apperrors.NewAnalysisContractViolation("UsersByID", fmt.Sprintf("has nil entry for %s", id))
		}
	}

	relations := make(map[string]ThreadRelation, len(users))
	relationFor := func(id string) ThreadRelation {
		rel, ok := relations[id]
		if !ok {
			rel = deps.ThreadRelationForUser(id)
			relations[id] = rel
		}
		return rel
	}

	edges := &Edges{Lookup: make(map[string]map[string]float64)}
	for _, user := range users {
		relation := relationFor(user.ID)

		partners := make(map[string]struct{})
		for otherID, count := range user.Mentions {
			if count > 0 {
				partners[otherID] = struct{}{}
			}
		}
		for otherID, count := range relation {
			if count > 0 {
				partners[otherID] = struct{}{}
			}
		}

		ordered := make([]string, 0, len(partners))
		for otherID := range partners {
			ordered = append(ordered, otherID)
		}
		sort.Strings(ordered)

		for _, otherID := range ordered {
			if otherID == user.ID {
				continue
			}
			if _, done := edges.Weight(user.ID, otherID); done {
				continue
			}
			other, ok := deps.UsersByID[otherID]
			if !ok {
				continue
			}
			w := EdgeWeight(user.MentionsOf(otherID), other.MentionsOf(user.ID), relation[otherID])
			if w == 0 {
				continue
			}
			edges.set(user.ID, otherID, w)
		}
	}

	return edges, nil
}
