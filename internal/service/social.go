// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces graph rules, orchestrates
//	Repository (Data layer)  → reads/writes users and edges
//
// Inside this package the business layer is split the same way the graph
// is: a User Registry (registry.go), a Connection Store (connections.go)
// and a Traversal Engine (traversal.go). SocialService is the facade over
// them and the only exported type; it logs, records metrics and wraps
// unexpected errors, but makes no graph decisions of its own.
//
// ONE LOCK:
// All three components share a single sync.RWMutex. Mutations hold the
// write lock across their whole check-then-act sequence; traversals hold
// the read lock for their whole run.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/graph"
	"github.com/sakif/social-connections/internal/metrics"
	"github.com/sakif/social-connections/internal/model"
	"github.com/sakif/social-connections/internal/repository"
)

// Validation limits, matching the column and request limits.
const (
	MaxUserStrIDLength   = 50
	MaxDisplayNameLength = 100
)

// Operation names used in logs and the graph_operations_total metric.
const (
	opRegister         = "register_user"
	opConnect          = "create_connection"
	opDisconnect       = "remove_connection"
	opDirectFriends    = "direct_friends"
	opFriendsOfFriends = "friends_of_friends"
	opDegree           = "degree_of_separation"
)

// SocialService is the command/query facade of the social graph.
type SocialService struct {
	reg     *registry
	conns   *connectionStore
	trav    *traversal
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewSocialService wires the three components around one shared lock.
// collector may be nil.
func NewSocialService(
	users repository.UserRepository,
	conns repository.ConnectionRepository,
	logger *slog.Logger,
	collector *metrics.Collector,
) *SocialService {
	mu := &sync.RWMutex{}
	reg := &registry{mu: mu, users: users}
	store := &connectionStore{reg: reg, conns: conns}

	return &SocialService{
		reg:     reg,
		conns:   store,
		trav:    &traversal{reg: reg, store: store},
		logger:  logger,
		metrics: collector,
	}
}

// RegisterUser validates and registers a new user.
//
// Both fields are trimmed first, as is every user id passed to the other
// methods, so " bob" and "bob" always name the same user. The returned user carries the internal ID
// assigned by the repository.
func (s *SocialService) RegisterUser(ctx context.Context, userStrID, displayName string) (*model.User, error) {
	userStrID = strings.TrimSpace(userStrID)
	displayName = strings.TrimSpace(displayName)

	if err := validateUserStrID("user_str_id", userStrID); err != nil {
		return nil, s.fail(opRegister, err)
	}
	if displayName == "" {
		return nil, s.fail(opRegister, apperror.ValidationFailed("display_name", "display_name is required"))
	}
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return nil, s.fail(opRegister, apperror.Validationf("display_name",
			"display_name must be %d characters or less", MaxDisplayNameLength))
	}

	user := &model.User{UserStrID: userStrID, DisplayName: displayName}
	if err := s.reg.register(ctx, user); err != nil {
		return nil, s.fail(opRegister, err, slog.String("user_str_id", userStrID))
	}

	s.succeed(opRegister)
	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("user_str_id", user.UserStrID),
	)
	return user, nil
}

// CreateConnection connects two users and returns model.StatusConnectionAdded.
// Argument order does not matter.
func (s *SocialService) CreateConnection(ctx context.Context, id1, id2 string) (string, error) {
	id1, id2 = strings.TrimSpace(id1), strings.TrimSpace(id2)
	if err := validatePair(id1, id2); err != nil {
		return "", s.fail(opConnect, err)
	}

	if err := s.conns.connect(ctx, id1, id2); err != nil {
		return "", s.fail(opConnect, err, slog.String("user1", id1), slog.String("user2", id2))
	}

	s.succeed(opConnect)
	conn := model.Canonicalize(id1, id2)
	s.logger.Info("connection added",
		slog.String("user1", conn.User1StrID),
		slog.String("user2", conn.User2StrID),
	)
	return model.StatusConnectionAdded, nil
}

// RemoveConnection disconnects two users and returns
// model.StatusConnectionRemoved.
func (s *SocialService) RemoveConnection(ctx context.Context, id1, id2 string) (string, error) {
	id1, id2 = strings.TrimSpace(id1), strings.TrimSpace(id2)
	if err := validatePair(id1, id2); err != nil {
		return "", s.fail(opDisconnect, err)
	}

	if err := s.conns.disconnect(ctx, id1, id2); err != nil {
		return "", s.fail(opDisconnect, err, slog.String("user1", id1), slog.String("user2", id2))
	}

	s.succeed(opDisconnect)
	conn := model.Canonicalize(id1, id2)
	s.logger.Info("connection removed",
		slog.String("user1", conn.User1StrID),
		slog.String("user2", conn.User2StrID),
	)
	return model.StatusConnectionRemoved, nil
}

// DirectFriends returns the users directly connected to userStrID, sorted
// by UserStrID. Returns an apperror.ErrUserNotFound error for an unknown user.
func (s *SocialService) DirectFriends(ctx context.Context, userStrID string) ([]model.User, error) {
	userStrID = strings.TrimSpace(userStrID)
	start := time.Now()
	users, err := s.trav.directFriends(ctx, userStrID)
	if err != nil {
		return nil, s.fail(opDirectFriends, err, slog.String("user_str_id", userStrID))
	}
	s.succeed(opDirectFriends)
	s.observe(opDirectFriends, start, nil)
	return users, nil
}

// FriendsOfFriends returns the users exactly two hops from userStrID,
// sorted by UserStrID.
func (s *SocialService) FriendsOfFriends(ctx context.Context, userStrID string) ([]model.User, error) {
	userStrID = strings.TrimSpace(userStrID)
	start := time.Now()
	users, adj, err := s.trav.friendsOfFriends(ctx, userStrID)
	if err != nil {
		return nil, s.fail(opFriendsOfFriends, err, slog.String("user_str_id", userStrID))
	}
	s.succeed(opFriendsOfFriends)
	s.observe(opFriendsOfFriends, start, adj)
	return users, nil
}

// DegreeOfSeparation returns the number of hops on the shortest path between
// two users. "Not connected" is a successful result (model.NotConnected),
// distinct from the apperror.ErrUsersNotFound error for unknown users.
func (s *SocialService) DegreeOfSeparation(ctx context.Context, from, to string) (model.Degree, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	start := time.Now()
	degree, adj, err := s.trav.degreeOfSeparation(ctx, from, to)
	if err != nil {
		return model.NotConnected, s.fail(opDegree, err, slog.String("from", from), slog.String("to", to))
	}
	s.succeed(opDegree)
	s.observe(opDegree, start, adj)

	hops, connected := degree.Hops()
	s.logger.Debug("degree computed",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("degree", hops),
		slog.Bool("connected", connected),
	)
	return degree, nil
}

// fail records a failed operation and returns the error to hand back to the
// caller. Domain errors pass through untouched; anything else is logged at
// Error and wrapped with the operation name.
func (s *SocialService) fail(op string, err error, attrs ...any) error {
	code := apperror.CodeOf(err)
	if code != "" {
		s.metrics.RecordOperation(op, code)
		return err
	}

	s.metrics.RecordOperation(op, "error")
	s.logger.Error("operation failed",
		append([]any{slog.String("op", op), slog.String("error", err.Error())}, attrs...)...,
	)
	return fmt.Errorf("service: %s: %w", op, err)
}

func (s *SocialService) succeed(op string) {
	s.metrics.RecordOperation(op, "ok")
}

// observe records a traversal's duration and, when it built one, the size
// of its snapshot.
func (s *SocialService) observe(op string, start time.Time, adj *graph.Adjacency) {
	s.metrics.ObserveTraversal(op, time.Since(start))
	if adj != nil {
		s.metrics.SetGraphSize(adj.NodeCount(), adj.EdgeCount())
	}
}

func validateUserStrID(field, id string) error {
	if id == "" {
		return apperror.ValidationFailed(field, field+" is required")
	}
	if utf8.RuneCountInString(id) > MaxUserStrIDLength {
		return apperror.Validationf(field, "%s must be %d characters or less", field, MaxUserStrIDLength)
	}
	return nil
}

func validatePair(id1, id2 string) error {
	if err := validateUserStrID("user1_str_id", id1); err != nil {
		return err
	}
	return validateUserStrID("user2_str_id", id2)
}
