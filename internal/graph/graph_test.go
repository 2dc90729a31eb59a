package graph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/social-connections/internal/model"
)

// edges builds canonical connections from "a-b" style pairs.
func edges(pairs ...string) []model.Connection {
	out := make([]model.Connection, 0, len(pairs))
	for _, p := range pairs {
		x, y, _ := strings.Cut(p, "-")
		out = append(out, model.Canonicalize(x, y))
	}
	return out
}

func TestBuild_IsSymmetric(t *testing.T) {
	adj := Build(edges("alice-bob", "carol-bob"))

	assert.Equal(t, []string{"bob"}, adj.Neighbors("alice"))
	assert.Equal(t, []string{"alice", "carol"}, adj.Neighbors("bob"))
	assert.Equal(t, []string{"bob"}, adj.Neighbors("carol"))
	assert.Equal(t, 3, adj.NodeCount())
	assert.Equal(t, 2, adj.EdgeCount())
}

func TestBuild_IgnoresSelfAndDuplicateEdges(t *testing.T) {
	in := append(edges("alice-bob", "bob-alice"), model.Connection{User1StrID: "dave", User2StrID: "dave"})
	adj := Build(in)

	assert.Equal(t, 1, adj.EdgeCount())
	assert.Empty(t, adj.Neighbors("dave"))
}

func TestNeighbors_UnknownIsEmpty(t *testing.T) {
	adj := Build(nil)

	got := adj.Neighbors("ghost")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// =========================================================================
// FRIENDS OF FRIENDS
// =========================================================================

func TestFriendsOfFriends(t *testing.T) {
	tests := []struct {
		name  string
		edges []model.Connection
		user  string
		want  []string
	}{
		{
			name:  "chain",
			edges: edges("a-b", "b-c", "c-d"),
			user:  "a",
			want:  []string{"c"},
		},
		{
			name:  "triangle excludes direct friends",
			edges: edges("a-b", "b-c", "a-c"),
			user:  "a",
			want:  []string{},
		},
		{
			name:  "star centre has none",
			edges: edges("hub-x", "hub-y", "hub-z"),
			user:  "hub",
			want:  []string{},
		},
		{
			name:  "star leaf sees the other leaves",
			edges: edges("hub-x", "hub-y", "hub-z"),
			user:  "x",
			want:  []string{"y", "z"},
		},
		{
			name:  "shared second-degree friend reported once",
			edges: edges("a-b", "a-c", "b-d", "c-d"),
			user:  "a",
			want:  []string{"d"},
		},
		{
			name:  "isolated user",
			edges: edges("a-b"),
			user:  "e",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.edges).FriendsOfFriends(tt.user)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =========================================================================
// DISTANCE (BFS)
// =========================================================================

func TestDistance(t *testing.T) {
	chain := Build(edges("a-b", "b-c", "c-d"))

	tests := []struct {
		name      string
		adj       *Adjacency
		from, to  string
		wantHops  int
		wantFound bool
	}{
		{"chain end to end", chain, "a", "d", 3, true},
		{"chain reversed", chain, "d", "a", 3, true},
		{"adjacent", chain, "b", "c", 1, true},
		{"self", chain, "a", "a", 0, true},
		{"self with no edges", chain, "e", "e", 0, true},
		{"isolated target", chain, "a", "e", 0, false},
		{"isolated source", chain, "e", "a", 0, false},
		{
			name:      "shortcut wins over long path",
			adj:       Build(edges("a-b", "b-c", "c-d", "d-e", "a-e")),
			from:      "a",
			to:        "d",
			wantHops:  2,
			wantFound: true,
		},
		{
			name:      "separate components",
			adj:       Build(edges("a-b", "c-d")),
			from:      "a",
			to:        "d",
			wantHops:  0,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hops, found := tt.adj.Distance(tt.from, tt.to)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantHops, hops)
		})
	}
}

func TestDistance_CycleTerminates(t *testing.T) {
	// A ring of 50 users: the farthest point is 25 hops away either way.
	var pairs []string
	for i := 0; i < 50; i++ {
		pairs = append(pairs, fmt.Sprintf("u%02d-u%02d", i, (i+1)%50))
	}
	adj := Build(edges(pairs...))

	hops, found := adj.Distance("u00", "u25")
	require.True(t, found)
	assert.Equal(t, 25, hops)
}
