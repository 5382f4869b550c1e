package weights

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"teamgraph/backend/internal/graph"
	apperrors "teamgraph/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thread(id, root string, repliers ...string) graph.Thread {
	th := graph.Thread{ID: id, RootAuthorID: root}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range repliers {
		th.Replies = append(th.Replies, graph.Reply{UserID: r, Timestamp: start.Add(time.Duration(i) * time.Minute)})
	}
	return th
}

func TestThreadRelationForThreads(t *testing.T) {
	threads := []graph.Thread{
		thread("t1", "a", "b", "b", "a", "c"),
		thread("t2", "b", "a"),
		thread("t3", "c", "d"),
		thread("t4", "a"),
		thread("t5", "d", "d"),
	}

	rel := ThreadRelationForThreads("a", threads)
	assert.Equal(t, ThreadRelation{"b": 2, "c": 1}, rel)
	_, self := rel["a"]
	assert.False(t, self)

	assert.Equal(t, ThreadRelation{"c": 1}, ThreadRelationForThreads("d", threads))
}

func TestThreadRelationForThreads_Empty(t *testing.T) {
	assert.Empty(t, ThreadRelationForThreads("a", nil))
	assert.Empty(t, ThreadRelationForThreads("a", []graph.Thread{}))
	assert.Empty(t, ThreadRelationForThreads("a", []graph.Thread{{ID: "empty"}}))
}

func TestThreadRelation_Symmetric(t *testing.T) {
	threads := []graph.Thread{
		thread("t1", "a", "b", "c"),
		thread("t2", "b", "c", "c", "d"),
		thread("t3", "d", "a"),
		thread("t4", "c", "a", "b", "d"),
	}
	ids := []string{"a", "b", "c", "d", "e"}
	idx := NewThreadRelationIndex(threads)

	for _, x := range ids {
		relX := ThreadRelationForThreads(x, threads)
		assert.Equal(t, relX, idx.ForUser(x), "index disagrees for %s", x)
		for _, y := range ids {
			relY := ThreadRelationForThreads(y, threads)
			assert.Equal(t, relX[y], relY[x], "asymmetric relation %s/%s", x, y)
		}
	}
}

func TestEdgeWeight(t *testing.T) {
	assert.Equal(t, 0.0, EdgeWeight(0, 0, 0))
	assert.Equal(t, 1.0/(2*9+2*14+7), EdgeWeight(9, 14, 7))
	assert.Equal(t, 1.0, EdgeWeight(0, 0, 1))
	assert.Equal(t, 0.5, EdgeWeight(1, 0, 0))
	assert.Equal(t, 0.5, EdgeWeight(0, 1, 0))
	// Inverse: more interaction, smaller weight
	assert.Less(t, EdgeWeight(5, 5, 5), EdgeWeight(1, 1, 1))
}

func TestEdgesForUsers_TwoUsers(t *testing.T) {
	users := []graph.User{
		{ID: "foo", Mentions: map[string]int{"bar": 14}},
		{ID: "bar", Mentions: map[string]int{"foo": 9}},
	}
	deps := Dependencies{
		UsersByID: UsersByID(users),
		ThreadRelationForUser: func(id string) ThreadRelation {
			if id == "foo" {
				return ThreadRelation{"bar": 7}
			}
			return ThreadRelation{"foo": 7}
		},
	}

	edges, err := EdgesForUsers(users, deps)
	require.NoError(t, err)
	require.Len(t, edges.List, 1)

	want := EdgeWeight(9, 14, 7)
	assert.Equal(t, want, edges.List[0].Weight)
	assert.Equal(t, want, edges.Lookup["foo"]["bar"])
	assert.Equal(t, want, edges.Lookup["bar"]["foo"])
}

func TestEdgesForUsers_CompletePairs(t *testing.T) {
	const n = 7
	users := make([]graph.User, n)
	for i := range users {
		users[i] = graph.User{ID: fmt.Sprintf("u%d", i), Mentions: map[string]int{}}
		for j := 0; j < n; j++ {
			if j != i && (i+j)%2 == 0 {
				users[i].Mentions[fmt.Sprintf("u%d", j)] = i + j
			}
		}
	}
	// Everyone shares one thread, so every pair has signal
	var everyone []string
	for _, u := range users[1:] {
		everyone = append(everyone, u.ID)
	}
	idx := NewThreadRelationIndex([]graph.Thread{thread("all", users[0].ID, everyone...)})

	edges, err := EdgesForUsers(users, Dependencies{UsersByID: UsersByID(users), ThreadRelationForUser: idx.ForUser})
	require.NoError(t, err)
	assert.Len(t, edges.List, n*(n-1)/2)

	seen := make(map[[2]string]bool)
	for _, e := range edges.List {
		key := [2]string{e.A, e.B}
		if e.B < e.A {
			key = [2]string{e.B, e.A}
		}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
		assert.Equal(t, edges.Lookup[e.A][e.B], edges.Lookup[e.B][e.A])
	}
}

func TestEdgesForUsers_OnlyIncomingMention(t *testing.T) {
	users := []graph.User{
		{ID: "a"},
		{ID: "b", Mentions: map[string]int{"a": 2}},
		{ID: "c"},
	}
	edges, err := EdgesForUsers(users, Dependencies{
		UsersByID:             UsersByID(users),
		ThreadRelationForUser: NewThreadRelationIndex(nil).ForUser,
	})
	require.NoError(t, err)
	require.Len(t, edges.List, 1)
	assert.Equal(t, EdgeWeight(0, 2, 0), edges.Lookup["a"]["b"])
	_, ok := edges.Weight("a", "c")
	assert.False(t, ok)
}

func TestEdgesForUsers_IgnoresUnknownAndSelf(t *testing.T) {
	users := []graph.User{
		{ID: "a", Mentions: map[string]int{"a": 4, "ghost": 3, "b": 0}},
		{ID: "b"},
	}
	edges, err := EdgesForUsers(users, Dependencies{
		UsersByID:             UsersByID(users),
		ThreadRelationForUser: func(string) ThreadRelation { return nil },
	})
	require.NoError(t, err)
	assert.Empty(t, edges.List)
}

func TestEdgesForUsers_ContractViolations(t *testing.T) {
	users := []graph.User{{ID: "a"}}

	_, err := EdgesForUsers(users, Dependencies{ThreadRelationForUser: func(string) ThreadRelation { return nil }})
	var violation *apperrors.ErrAnalysisContractViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "UsersByID", violation.Dependency)

	called := false
	_, err = EdgesForUsers(users, Dependencies{
		UsersByID:             map[string]*graph.User{"a": nil},
		ThreadRelationForUser: func(string) ThreadRelation { called = true; return nil },
	})
	require.ErrorAs(t, err, &violation)
	assert.False(t, called, "no computation before validation")

	_, err = EdgesForUsers(users, Dependencies{UsersByID: UsersByID(users)})
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "ThreadRelationForUser", violation.Dependency)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeAnalysis))
}

func TestTriple_JSON(t *testing.T) {
	data, err := json.Marshal([]Triple{{A: "a", B: "b", Weight: 0.25}})
	require.NoError(t, err)
	assert.JSONEq(t, `[["a","b",0.25]]`, string(data))

	var back []Triple
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Triple{{A: "a", B: "b", Weight: 0.25}}, back)

	var bad Triple
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &bad))
}
