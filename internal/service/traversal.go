package service

import (
	"context"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/graph"
	"github.com/sakif/social-connections/internal/model"
)

// traversal is the Graph Traversal Engine. Every query holds the read lock
// from its existence check to its last storage read, so it never sees a
// connect or disconnect half applied. Queries run concurrently with each
// other.
type traversal struct {
	reg   *registry
	store *connectionStore
}

// directFriends returns the users directly connected to userStrID.
func (t *traversal) directFriends(ctx context.Context, userStrID string) ([]model.User, error) {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()

	if err := t.requireUser(ctx, userStrID); err != nil {
		return nil, err
	}

	ids, err := t.store.neighborsOf(ctx, userStrID)
	if err != nil {
		return nil, err
	}
	return t.reg.lookup(ctx, ids)
}

// friendsOfFriends returns the users exactly two hops away from userStrID,
// excluding userStrID and its direct friends. The second argument is the
// snapshot it ran against, for instrumentation.
func (t *traversal) friendsOfFriends(ctx context.Context, userStrID string) ([]model.User, *graph.Adjacency, error) {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()

	if err := t.requireUser(ctx, userStrID); err != nil {
		return nil, nil, err
	}

	adj, err := t.store.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	users, err := t.reg.lookup(ctx, adj.FriendsOfFriends(userStrID))
	if err != nil {
		return nil, nil, err
	}
	return users, adj, nil
}

// degreeOfSeparation returns the shortest-path length between from and to,
// or model.NotConnected when no path exists. The snapshot is nil when the
// answer did not need one.
func (t *traversal) degreeOfSeparation(ctx context.Context, from, to string) (model.Degree, *graph.Adjacency, error) {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()

	ok, err := t.reg.allExist(ctx, from, to)
	if err != nil {
		return model.NotConnected, nil, err
	}
	if !ok {
		return model.NotConnected, nil, apperror.UsersNotFound()
	}

	// Self-distance is 0 whether or not the user has any connections.
	if from == to {
		return model.Separation(0), nil, nil
	}

	adj, err := t.store.snapshot(ctx)
	if err != nil {
		return model.NotConnected, nil, err
	}
	hops, found := adj.Distance(from, to)
	if !found {
		return model.NotConnected, adj, nil
	}
	return model.Separation(hops), adj, nil
}

func (t *traversal) requireUser(ctx context.Context, userStrID string) error {
	ok, err := t.reg.exists(ctx, userStrID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.UserNotFound(userStrID)
	}
	return nil
}
