// Package graph is the traversal engine of the social graph.
//
// It works only on a snapshot: the caller reads the full edge set from the
// connection store once, builds an Adjacency from it, and every query below
// runs in memory against that snapshot. Nothing here touches storage or
// takes locks, so a single traversal can never see a half-applied mutation.
package graph

import (
	"sort"

	"github.com/sakif/social-connections/internal/model"
)

// Adjacency maps each user id to the set of ids it is directly connected to.
// Built from undirected edges, so it is always symmetric: b is in a's set
// exactly when a is in b's.
type Adjacency struct {
	neighbors map[string]map[string]struct{}
	edges     int
}

// Build derives an Adjacency from a slice of edges. Self-edges and
// duplicate edges in the input are ignored.
func Build(edges []model.Connection) *Adjacency {
	a := &Adjacency{
		neighbors: make(map[string]map[string]struct{}, len(edges)),
	}
	for _, e := range edges {
		if e.IsSelf() {
			continue
		}
		if _, dup := a.neighbors[e.User1StrID][e.User2StrID]; dup {
			continue
		}
		a.link(e.User1StrID, e.User2StrID)
		a.link(e.User2StrID, e.User1StrID)
		a.edges++
	}
	return a
}

func (a *Adjacency) link(from, to string) {
	set, ok := a.neighbors[from]
	if !ok {
		set = make(map[string]struct{})
		a.neighbors[from] = set
	}
	set[to] = struct{}{}
}

// NodeCount returns the number of users with at least one connection.
func (a *Adjacency) NodeCount() int {
	return len(a.neighbors)
}

// EdgeCount returns the number of distinct undirected edges.
func (a *Adjacency) EdgeCount() int {
	return a.edges
}

// Neighbors returns the ids directly connected to id, sorted. A user with no
// connections (or one the snapshot has never seen) has no neighbors; that is
// not an error.
func (a *Adjacency) Neighbors(id string) []string {
	return sortedKeys(a.neighbors[id])
}

// FriendsOfFriends returns every id exactly two hops from id: the union of
// each direct neighbor's neighbors, minus id itself and minus the direct
// neighbors. In a triangle a-b-c, c is a direct friend of a, so a has no
// friends-of-friends.
func (a *Adjacency) FriendsOfFriends(id string) []string {
	direct := a.Neighbors(id)
	isDirect := make(map[string]struct{}, len(direct))
	for _, friend := range direct {
		isDirect[friend] = struct{}{}
	}

	result := make(map[string]struct{})
	for _, friend := range direct {
		for _, candidate := range a.Neighbors(friend) {
			if candidate == id {
				continue
			}
			if _, ok := isDirect[candidate]; ok {
				continue
			}
			result[candidate] = struct{}{}
		}
	}

	return sortedKeys(result)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
