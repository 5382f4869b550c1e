// Package weights derives undirected edge weights from mention counts and
// shared reply threads.
//
// Weights are inverse: the more two users interact, the smaller the weight.
// Layout and shortest-path consumers treat the weight as a length.
package weights

import "teamgraph/backend/internal/graph"

// ThreadRelation maps another user's ID to the number of distinct threads
// shared with them
type ThreadRelation map[string]int

// ThreadRelationForThreads counts, for userID, the threads in which each
// other user also took part (as root author or replier). A thread counts
// once per pair however many times either side posted in it, and userID
// never appears as a key.
func ThreadRelationForThreads(userID string, threads []graph.Thread) ThreadRelation {
	relation := make(ThreadRelation)
	for _, thread := range threads {
		participants := thread.Participants()
		if !contains(participants, userID) {
			continue
		}
		for _, other := range participants {
			if other == userID {
				continue
			}
			relation[other]++
		}
	}
	return relation
}

// ThreadRelationIndex holds every user's thread relation, built in one
// pass over the threads
type ThreadRelationIndex struct {
	relations map[string]ThreadRelation
}

// NewThreadRelationIndex indexes threads by participant pair
func NewThreadRelationIndex(threads []graph.Thread) *ThreadRelationIndex {
	idx := &ThreadRelationIndex{relations: make(map[string]ThreadRelation)}
	for _, thread := range threads {
		participants := thread.Participants()
		for i, a := range participants {
			for _, b := range participants[i+1:] {
				idx.bump(a, b)
				idx.bump(b, a)
			}
		}
	}
	return idx
}

func (idx *ThreadRelationIndex) bump(a, b string) {
	rel, ok := idx.relations[a]
	if !ok {
		rel = make(ThreadRelation)
		idx.relations[a] = rel
	}
	rel[b]++
}

// ForUser returns userID's relation. The returned map is a copy and is
// empty for unknown users.
func (idx *ThreadRelationIndex) ForUser(userID string) ThreadRelation {
	out := make(ThreadRelation, len(idx.relations[userID]))
	for k, v := range idx.relations[userID] {
		out[k] = v
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
