package service

import (
	"context"
	"fmt"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/graph"
	"github.com/sakif/social-connections/internal/model"
	"github.com/sakif/social-connections/internal/repository"
)

// connectionStore is the Connection Store. It owns canonicalization and
// the edge invariants: no self-edges, no duplicate edges, both endpoints
// registered.
type connectionStore struct {
	reg   *registry
	conns repository.ConnectionRepository
}

// connect adds the edge {id1, id2}. Takes the write lock.
//
// CHECK ORDER:
// existence → self → duplicate. A self-connection request for an unknown
// user reports UsersNotFound, not SelfConnection. The whole sequence runs
// under one write lock, so two concurrent connects for the same pair can
// never both see "not yet connected".
func (s *connectionStore) connect(ctx context.Context, id1, id2 string) error {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()

	ok, err := s.reg.allExist(ctx, id1, id2)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.UsersNotFound()
	}

	conn := model.Canonicalize(id1, id2)
	if conn.IsSelf() {
		return apperror.SelfConnection()
	}

	exists, err := s.conns.ConnectionExists(ctx, conn)
	if err != nil {
		return fmt.Errorf("checking connection: %w", err)
	}
	if exists {
		return apperror.AlreadyConnected()
	}

	if err := s.conns.InsertConnection(ctx, conn); err != nil {
		if apperror.IsDomain(err) {
			return err
		}
		return fmt.Errorf("inserting connection: %w", err)
	}
	return nil
}

// disconnect removes the edge {id1, id2}. Takes the write lock.
func (s *connectionStore) disconnect(ctx context.Context, id1, id2 string) error {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()

	ok, err := s.reg.allExist(ctx, id1, id2)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.UsersNotFound()
	}

	if err := s.conns.DeleteConnection(ctx, model.Canonicalize(id1, id2)); err != nil {
		if apperror.IsDomain(err) {
			return err
		}
		return fmt.Errorf("deleting connection: %w", err)
	}
	return nil
}

// snapshot reads the full edge set and builds the adjacency view from it.
// The caller must hold the lock for as long as it uses the result for a
// decision about the live graph.
func (s *connectionStore) snapshot(ctx context.Context) (*graph.Adjacency, error) {
	edges, err := s.conns.ListConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	return graph.Build(edges), nil
}

// neighborsOf returns the ids directly connected to userStrID in either
// slot. A user with no connections has none; that is not an error.
func (s *connectionStore) neighborsOf(ctx context.Context, userStrID string) ([]string, error) {
	ids, err := s.conns.NeighborIDs(ctx, userStrID)
	if err != nil {
		return nil, fmt.Errorf("loading neighbors: %w", err)
	}
	return ids, nil
}
