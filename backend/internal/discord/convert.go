package discord

import (
	"sort"

	"teamgraph/backend/internal/graph"

	"github.com/bwmarrin/discordgo"
)

// maxReplyDepth bounds reference chasing when resolving a reply chain
const maxReplyDepth = 64

// Snapshot is the interaction data collected from one guild
type Snapshot struct {
	Users   []graph.User
	Threads []graph.Thread
}

// BuildSnapshot turns raw channel messages into users and threads. A
// thread is rooted at the first message of a reply chain; every message
// that replies into the chain, directly or through another reply, counts
// as a reply to that root. Bots are ignored, as are self-mentions.
func BuildSnapshot(teamID string, messages []*discordgo.Message) Snapshot {
	byID := make(map[string]*discordgo.Message, len(messages))
	for _, m := range messages {
		if m == nil || m.Author == nil {
			continue
		}
		byID[m.ID] = m
	}

	users := map[string]*graph.User{}
	touch := func(u *discordgo.User) *graph.User {
		existing, ok := users[u.ID]
		if !ok {
			existing = &graph.User{ID: u.ID, Name: u.Username, TeamID: teamID, Mentions: map[string]int{}}
			users[u.ID] = existing
		}
		return existing
	}

	threads := map[string]*graph.Thread{}
	for _, m := range byID {
		if m.Author.Bot {
			continue
		}
		author := touch(m.Author)

		for _, mention := range m.Mentions {
			if mention == nil || mention.Bot || mention.ID == m.Author.ID {
				continue
			}
			touch(mention)
			author.Mentions[mention.ID]++
		}

		root := rootOf(m, byID)
		if root == nil || root.ID == m.ID || root.Author.Bot {
			continue
		}
		t, ok := threads[root.ID]
		if !ok {
			touch(root.Author)
			t = &graph.Thread{ID: root.ID, RootAuthorID: root.Author.ID}
			threads[root.ID] = t
		}
		t.Replies = append(t.Replies, graph.Reply{MessageID: m.ID, UserID: m.Author.ID, Timestamp: m.Timestamp})
	}

	snap := Snapshot{
		Users:   make([]graph.User, 0, len(users)),
		Threads: make([]graph.Thread, 0, len(threads)),
	}
	for _, u := range users {
		snap.Users = append(snap.Users, *u)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })

	for _, t := range threads {
		sort.SliceStable(t.Replies, func(i, j int) bool {
			return t.Replies[i].Timestamp.Before(t.Replies[j].Timestamp)
		})
		snap.Threads = append(snap.Threads, *t)
	}
	sort.Slice(snap.Threads, func(i, j int) bool { return snap.Threads[i].ID < snap.Threads[j].ID })
	return snap
}

// rootOf follows message references back to the oldest message still in
// the page. Replies to messages outside the page have no root.
func rootOf(m *discordgo.Message, byID map[string]*discordgo.Message) *discordgo.Message {
	if m.MessageReference == nil {
		return m
	}
	current := m
	for depth := 0; depth < maxReplyDepth; depth++ {
		ref := current.MessageReference
		if ref == nil || ref.MessageID == "" {
			return current
		}
		parent, ok := byID[ref.MessageID]
		if !ok {
			if current == m {
				return nil
			}
			return current
		}
		current = parent
	}
	return current
}
