// Package repository defines the storage contracts for the social graph.
//
// The service layer depends only on these interfaces, never on a concrete
// backend. Three implementations live in sub-packages:
//   - memory: maps in process memory, lost on restart
//   - sqlite: embedded SQL database (modernc.org/sqlite)
//   - neo4jstore: native graph database (neo4j-go-driver)
//
// Stores are dumb: they persist and look up rows, and report the two
// conflicts a storage engine detects for free (duplicate user, duplicate
// edge). Ordering of checks and locking belong to the service layer.
package repository

import (
	"context"

	"github.com/sakif/social-connections/internal/model"
)

// UserRepository persists registered users keyed by UserStrID.
type UserRepository interface {
	// CreateUser assigns user.ID and user.CreatedAt and stores the user.
	// Returns an apperror.ErrAlreadyExists error if UserStrID is taken.
	CreateUser(ctx context.Context, user *model.User) error

	UserExists(ctx context.Context, userStrID string) (bool, error)

	// GetUsers returns the users whose UserStrID is in ids. Unknown ids are
	// skipped. The result order is unspecified.
	GetUsers(ctx context.Context, ids []string) ([]model.User, error)
}

// ConnectionRepository persists undirected edges. Every Connection passed in
// must already be canonical (see model.Canonicalize).
type ConnectionRepository interface {
	// InsertConnection returns an apperror.ErrAlreadyConnected error if the
	// edge is already stored.
	InsertConnection(ctx context.Context, conn model.Connection) error

	// DeleteConnection returns an apperror.ErrNotConnected error if the edge
	// is not stored.
	DeleteConnection(ctx context.Context, conn model.Connection) error

	ConnectionExists(ctx context.Context, conn model.Connection) (bool, error)

	// ListConnections returns every stored edge.
	ListConnections(ctx context.Context) ([]model.Connection, error)

	// NeighborIDs returns the UserStrIDs directly connected to userStrID.
	NeighborIDs(ctx context.Context, userStrID string) ([]string, error)
}

// Store is a backend that serves both repositories and owns a connection
// to its storage engine.
type Store interface {
	UserRepository
	ConnectionRepository

	// Ping checks the backend is reachable. Used by the health endpoint.
	Ping(ctx context.Context) error
	Close() error
}
