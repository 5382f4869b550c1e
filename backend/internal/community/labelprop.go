// Package community detects communities by asynchronous label propagation.
package community

import "sort"

// DefaultIterations is the sweep budget used by Propagate callers that
// have no preference
const DefaultIterations = 10

// Random is the source of randomness for tie-breaking and sweep order.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// Neighborhood is the read-only view of a graph label propagation needs
type Neighborhood interface {
	NodeIDs() []string
	Neighbors(id string) []string
}

// Labeling maps node ID to community label
type Labeling map[string]string

// Clone returns an independent copy
func (l Labeling) Clone() Labeling {
	out := make(Labeling, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Count returns the number of distinct labels in use
func (l Labeling) Count() int {
	distinct := make(map[string]struct{}, len(l))
	for _, label := range l {
		distinct[label] = struct{}{}
	}
	return len(distinct)
}

// InitialLabeling puts every node in its own community
func InitialLabeling(g Neighborhood) Labeling {
	ids := g.NodeIDs()
	labels := make(Labeling, len(ids))
	for _, id := range ids {
		labels[id] = id
	}
	return labels
}

// PickLabel returns the most frequent label among neighbors. Ties are
// broken uniformly at random; an empty neighborhood keeps the node's
// current label.
func PickLabel(labels Labeling, nodeID string, neighbors []string, rng Random) string {
	if len(neighbors) == 0 {
		return labels[nodeID]
	}

	tally := make(map[string]int, len(neighbors))
	order := make([]string, 0, len(neighbors))
	best := 0
	for _, n := range neighbors {
		label := labels[n]
		if _, ok := tally[label]; !ok {
			order = append(order, label)
		}
		tally[label]++
		if tally[label] > best {
			best = tally[label]
		}
	}

	tied := order[:0:0]
	for _, label := range order {
		if tally[label] == best {
			tied = append(tied, label)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return tied[rng.IntN(len(tied))]
}

// ShuffledNodes returns a fresh uniformly random permutation of ids
// (Fisher-Yates). The input is not modified.
func ShuffledNodes(ids []string, rng Random) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PropagateStep runs one sweep. Nodes are visited in a new random order
// and each update is visible to the nodes visited after it. The input
// labeling is left untouched.
func PropagateStep(g Neighborhood, labels Labeling, rng Random) Labeling {
	next := labels.Clone()
	for _, id := range ShuffledNodes(g.NodeIDs(), rng) {
		next[id] = PickLabel(next, id, g.Neighbors(id), rng)
	}
	return next
}

// Propagate runs up to iterations sweeps from the initial labeling. It
// returns as soon as a sweep leaves as many distinct labels as there were
// after initialisation.
func Propagate(g Neighborhood, rng Random, iterations int) Labeling {
	labels := InitialLabeling(g)
	if len(labels) == 0 {
		return labels
	}
	initial := labels.Count()

	for i := 0; i < iterations; i++ {
		labels = PropagateStep(g, labels, rng)
		if labels.Count() >= initial {
			return labels
		}
	}
	return labels
}

// Communities groups node IDs by label. Members are sorted.
func Communities(labels Labeling) map[string][]string {
	out := make(map[string][]string)
	for id, label := range labels {
		out[label] = append(out[label], id)
	}
	for _, members := range out {
		sort.Strings(members)
	}
	return out
}
