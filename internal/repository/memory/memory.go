// Package memory is an in-process repository.Store backed by Go maps.
//
// It is the default backend: nothing to install, nothing persisted. All
// data is lost when the process exits. Tests across the module use it as
// the reference implementation of the repository contracts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/model"
	"github.com/sakif/social-connections/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps users and edges in maps.
//
// The service layer already serializes mutations, but the store carries its
// own mutex so it is safe on its own (the repository tests call it directly
// from several goroutines).
type Store struct {
	mu    sync.RWMutex
	users map[string]model.User          // keyed by UserStrID
	edges map[model.Connection]struct{}  // canonical edges
	adj   map[string]map[string]struct{} // UserStrID -> neighbor UserStrIDs
	now   func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users: make(map[string]model.User),
		edges: make(map[model.Connection]struct{}),
		adj:   make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.users[user.UserStrID]; taken {
		return apperror.AlreadyExists(user.UserStrID)
	}

	user.ID = xid.New().String()
	user.CreatedAt = s.now()
	s.users[user.UserStrID] = *user
	return nil
}

func (s *Store) UserExists(_ context.Context, userStrID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[userStrID]
	return ok, nil
}

func (s *Store) GetUsers(_ context.Context, ids []string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) InsertConnection(_ context.Context, conn model.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[conn]; ok {
		return apperror.AlreadyConnected()
	}
	s.edges[conn] = struct{}{}
	s.link(conn.User1StrID, conn.User2StrID)
	s.link(conn.User2StrID, conn.User1StrID)
	return nil
}

func (s *Store) DeleteConnection(_ context.Context, conn model.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[conn]; !ok {
		return apperror.NotConnected()
	}
	delete(s.edges, conn)
	s.unlink(conn.User1StrID, conn.User2StrID)
	s.unlink(conn.User2StrID, conn.User1StrID)
	return nil
}

func (s *Store) ConnectionExists(_ context.Context, conn model.Connection) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[conn]
	return ok, nil
}

// ListConnections returns every edge, sorted by (User1StrID, User2StrID).
func (s *Store) ListConnections(_ context.Context) ([]model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Connection, 0, len(s.edges))
	for c := range s.edges {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].User1StrID != out[j].User1StrID {
			return out[i].User1StrID < out[j].User1StrID
		}
		return out[i].User2StrID < out[j].User2StrID
	})
	return out, nil
}

// NeighborIDs returns the neighbors of userStrID, sorted.
func (s *Store) NeighborIDs(_ context.Context, userStrID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.adj[userStrID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) link(from, to string) {
	set, ok := s.adj[from]
	if !ok {
		set = make(map[string]struct{})
		s.adj[from] = set
	}
	set[to] = struct{}{}
}

func (s *Store) unlink(from, to string) {
	set := s.adj[from]
	delete(set, to)
	if len(set) == 0 {
		delete(s.adj, from)
	}
}
