package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sakif/social-connections/internal/model"
	"github.com/sakif/social-connections/internal/repository"
)

// registry is the User Registry: the single place that decides whether an
// external id is known.
//
// LOCKING CONVENTION:
// mu is shared with the connection store and the traversal engine. Methods
// that take the lock themselves say so; every other method expects the
// caller to already hold it (read or write).
type registry struct {
	mu    *sync.RWMutex
	users repository.UserRepository
}

// register stores a new user. Takes the write lock.
func (r *registry) register(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.users.CreateUser(ctx, user)
}

func (r *registry) exists(ctx context.Context, userStrID string) (bool, error) {
	ok, err := r.users.UserExists(ctx, userStrID)
	if err != nil {
		return false, fmt.Errorf("checking user %q: %w", userStrID, err)
	}
	return ok, nil
}

// allExist reports whether every id is registered. It stops at the first
// unknown id.
func (r *registry) allExist(ctx context.Context, ids ...string) (bool, error) {
	for _, id := range ids {
		ok, err := r.exists(ctx, id)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// lookup resolves ids to full user records, sorted by UserStrID.
func (r *registry) lookup(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	users, err := r.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserStrID < users[j].UserStrID })
	return users, nil
}
