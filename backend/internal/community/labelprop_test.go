package community

import (
	"math/rand/v2"
	"testing"

	"teamgraph/backend/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRandom replays fixed IntN results, clamped to the range asked for
type scriptedRandom struct {
	values []int
	calls  []int
}

func (s *scriptedRandom) IntN(n int) int {
	s.calls = append(s.calls, n)
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v % n
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func completeGraph(t *testing.T, ids ...string) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	for _, id := range ids {
		g.AddNode(id, "")
	}
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			require.NoError(t, g.SetEdge(a, b, 1))
		}
	}
	return g
}

func TestInitialLabeling(t *testing.T) {
	g := completeGraph(t, "a", "b", "c")
	assert.Equal(t, Labeling{"a": "a", "b": "b", "c": "c"}, InitialLabeling(g))
}

func TestPickLabel_Majority(t *testing.T) {
	labels := Labeling{"a": "x", "b": "x", "c": "y", "d": "d"}
	rng := &scriptedRandom{}
	assert.Equal(t, "x", PickLabel(labels, "d", []string{"a", "b", "c"}, rng))
	assert.Empty(t, rng.calls, "no randomness needed without a tie")
}

func TestPickLabel_EmptyNeighborhoodKeepsLabel(t *testing.T) {
	labels := Labeling{"a": "z"}
	assert.Equal(t, "z", PickLabel(labels, "a", nil, &scriptedRandom{}))
}

func TestPickLabel_TieUsesRandomSource(t *testing.T) {
	labels := Labeling{"a": "a", "b": "b", "c": "c", "d": "d"}
	neighbors := []string{"a", "b", "c"}

	for want, idx := range map[string]int{"a": 0, "b": 1, "c": 2} {
		rng := &scriptedRandom{values: []int{idx}}
		assert.Equal(t, want, PickLabel(labels, "d", neighbors, rng))
		assert.Equal(t, []int{3}, rng.calls)
	}
}

func TestPickLabel_TieIsUniform(t *testing.T) {
	labels := Labeling{"a": "a", "b": "b", "c": "c", "d": "d"}
	rng := newRand(7)
	counts := map[string]int{}
	const runs = 3000
	for i := 0; i < runs; i++ {
		counts[PickLabel(labels, "d", []string{"a", "b", "c"}, rng)]++
	}
	for _, label := range []string{"a", "b", "c"} {
		assert.InDelta(t, runs/3, counts[label], 150, "label %s", label)
	}
}

func TestShuffledNodes_IsPermutationAndOwned(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	out := ShuffledNodes(ids, newRand(1))

	assert.ElementsMatch(t, ids, out)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	out[0] = "mutated"
	assert.Equal(t, "a", ids[0])
}

func TestShuffledNodes_Scripted(t *testing.T) {
	// i=2 swaps with 0, i=1 swaps with 0
	rng := &scriptedRandom{values: []int{0, 0}}
	assert.Equal(t, []string{"b", "c", "a"}, ShuffledNodes([]string{"a", "b", "c"}, rng))
	assert.Equal(t, []int{3, 2}, rng.calls)
}

func TestPropagateStep_DoesNotMutateInput(t *testing.T) {
	g := completeGraph(t, "a", "b", "c", "d")
	labels := InitialLabeling(g)
	next := PropagateStep(g, labels, newRand(3))

	assert.Equal(t, Labeling{"a": "a", "b": "b", "c": "c", "d": "d"}, labels)
	assert.Len(t, next, 4)
}

func TestPropagateStep_AsynchronousUpdate(t *testing.T) {
	// Path a-b-c. Order after shuffle with zeros: [b, c, a].
	// b sees {a, c} tie -> picks a (index 0). c sees {b=a} -> a. a sees {b=a} -> a.
	g := graph.NewGraph()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, "")
	}
	require.NoError(t, g.SetEdge("a", "b", 1))
	require.NoError(t, g.SetEdge("b", "c", 1))

	rng := &scriptedRandom{values: []int{0, 0, 0}}
	next := PropagateStep(g, InitialLabeling(g), rng)
	assert.Equal(t, Labeling{"a": "a", "b": "a", "c": "a"}, next)
}

func TestPropagate_IsolatedNodeKeepsLabel(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode("solo", "")
	assert.Equal(t, Labeling{"solo": "solo"}, Propagate(g, newRand(1), DefaultIterations))
}

func TestPropagate_EmptyGraph(t *testing.T) {
	assert.Empty(t, Propagate(graph.NewGraph(), newRand(1), DefaultIterations))
}

func TestPropagate_NoEdgesKeepsLabels(t *testing.T) {
	g := graph.NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, "")
	}
	labels := InitialLabeling(g)
	rng := newRand(9)
	for i := 0; i < 5; i++ {
		labels = PropagateStep(g, labels, rng)
	}
	assert.Equal(t, InitialLabeling(g), labels)
	assert.Equal(t, InitialLabeling(g), Propagate(g, rng, DefaultIterations))
}

func TestPropagate_CompleteGraphConvergesUniformly(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	g := completeGraph(t, ids...)
	rng := newRand(2024)

	wins := map[string]int{}
	const runs = 400
	for i := 0; i < runs; i++ {
		labels := Propagate(g, rng, DefaultIterations)
		require.Equal(t, 1, labels.Count(), "run %d did not converge", i)
		wins[labels["a"]]++
	}

	for _, id := range ids {
		assert.InDelta(t, runs/4, wins[id], 40, "label %s won %d times", id, wins[id])
	}
}

func TestPropagate_TwoCliquesSeparate(t *testing.T) {
	g := graph.NewGraph()
	left := []string{"l1", "l2", "l3", "l4"}
	right := []string{"r1", "r2", "r3", "r4"}
	for _, id := range append(append([]string{}, left...), right...) {
		g.AddNode(id, "")
	}
	for _, clique := range [][]string{left, right} {
		for i, a := range clique {
			for _, b := range clique[i+1:] {
				require.NoError(t, g.SetEdge(a, b, 1))
			}
		}
	}

	labels := Propagate(g, newRand(11), DefaultIterations)
	assert.Equal(t, 2, labels.Count())
	for _, id := range left[1:] {
		assert.Equal(t, labels["l1"], labels[id])
	}
	for _, id := range right[1:] {
		assert.Equal(t, labels["r1"], labels[id])
	}
	assert.NotEqual(t, labels["l1"], labels["r1"])
}

func TestCommunities(t *testing.T) {
	groups := Communities(Labeling{"b": "x", "a": "x", "c": "c"})
	assert.Equal(t, map[string][]string{"x": {"a", "b"}, "c": {"c"}}, groups)
}
