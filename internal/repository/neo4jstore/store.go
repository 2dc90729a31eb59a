// Package neo4jstore implements the repository interfaces on a Neo4j graph
// database.
//
// GRAPH MODEL:
//
//	(:User {id, user_str_id, display_name, created_at})
//	(:User)-[:FRIENDS_WITH]->(:User)
//
// Neo4j relationships always have a direction. Friendship is undirected, so
// each edge is stored once, pointing from the canonical first user to the
// second. Queries that do not care about direction match with -[]- instead
// of -[]->.
package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/xid"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/model"
	"github.com/sakif/social-connections/internal/repository"
)

var _ repository.Store = (*Store)(nil)

const (
	labelUser   = "User"
	codeUnique  = "Neo.ClientError.Schema.ConstraintValidationFailed"
	constraint  = "CREATE CONSTRAINT user_str_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.user_str_id IS UNIQUE"
	propStrID   = "user_str_id"
	propName    = "display_name"
	propID      = "id"
	propCreated = "created_at"
)

// runner executes one Cypher statement and buffers the whole result.
// Store talks to Neo4j only through it, so tests can swap in a fake.
type runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Config holds the connection settings for a Neo4j instance.
type Config struct {
	URI      string // e.g. "neo4j://localhost:7687"
	Username string
	Password string
	Database string // "" selects the server's default database
}

// Store is a repository.Store backed by Neo4j.
type Store struct {
	driver neo4j.DriverWithContext
	run    runner
}

// New connects to Neo4j, verifies connectivity and creates the uniqueness
// constraint on user_str_id.
func New(ctx context.Context, cfg Config) (*Store, error) {
	drv, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: creating driver: %w", err)
	}
	if err := drv.VerifyConnectivity(ctx); err != nil {
		drv.Close(ctx)
		return nil, fmt.Errorf("neo4j: verifying connectivity: %w", err)
	}

	s := &Store{
		driver: drv,
		run:    &executor{driver: drv, database: cfg.Database},
	}
	if err := s.migrate(ctx); err != nil {
		drv.Close(ctx)
		return nil, err
	}
	return s, nil
}

func newWithRunner(r runner) *Store {
	return &Store{run: r}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.run.Run(ctx, constraint, nil); err != nil {
		return fmt.Errorf("neo4j: creating user_str_id constraint: %w", err)
	}
	return nil
}

// Ping checks the server is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j: ping: %w", err)
	}
	return nil
}

// Close releases the driver's connection pool.
func (s *Store) Close() error {
	if s.driver == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.driver.Close(ctx)
}

// =========================================================================
// USERS
// =========================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := s.run.Run(ctx,
		`CREATE (u:User {id: $id, user_str_id: $user_str_id, display_name: $display_name, created_at: $created_at})`,
		map[string]any{
			propID:      id,
			propStrID:   user.UserStrID,
			propName:    user.DisplayName,
			propCreated: now,
		},
	)
	if err != nil {
		if isConstraintViolation(err) {
			return apperror.AlreadyExists(user.UserStrID)
		}
		return fmt.Errorf("neo4j: creating user %q: %w", user.UserStrID, err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

func (s *Store) UserExists(ctx context.Context, userStrID string) (bool, error) {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("u", labelUser).WithProperties(map[string]interface{}{propStrID: userStrID})).
		Return("u").
		Build()
	if err != nil {
		return false, fmt.Errorf("neo4j: building user lookup: %w", err)
	}

	res, err := s.run.Run(ctx, query, params)
	if err != nil {
		return false, fmt.Errorf("neo4j: looking up user %q: %w", userStrID, err)
	}
	return len(res.Records) > 0, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	res, err := s.run.Run(ctx,
		`MATCH (u:User) WHERE u.user_str_id IN $ids
		 RETURN u.id AS id, u.user_str_id AS user_str_id,
		        u.display_name AS display_name, u.created_at AS created_at
		 ORDER BY user_str_id`,
		map[string]any{"ids": ids},
	)
	if err != nil {
		return nil, fmt.Errorf("neo4j: loading users: %w", err)
	}

	users := make([]model.User, 0, len(res.Records))
	for _, rec := range res.Records {
		u, err := userFromRecord(rec)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func userFromRecord(rec *neo4j.Record) (model.User, error) {
	var u model.User
	var err error
	if u.ID, err = stringValue(rec, propID); err != nil {
		return u, err
	}
	if u.UserStrID, err = stringValue(rec, propStrID); err != nil {
		return u, err
	}
	if u.DisplayName, err = stringValue(rec, propName); err != nil {
		return u, err
	}
	// created_at comes back as a time.Time for DateTime properties. Older
	// nodes without the property are tolerated.
	if raw, ok := rec.Get(propCreated); ok {
		if t, ok := raw.(time.Time); ok {
			u.CreatedAt = t
		}
	}
	return u, nil
}

// =========================================================================
// CONNECTIONS
// =========================================================================

// InsertConnection creates the edge unless it is already present.
//
// The WHERE NOT guard makes the statement a no-op for an existing edge;
// count(*) then reports 0. A 0 can also mean an endpoint node is missing,
// so that case is told apart with a follow-up existence check.
func (s *Store) InsertConnection(ctx context.Context, conn model.Connection) error {
	res, err := s.run.Run(ctx,
		`MATCH (a:User {user_str_id: $user1}), (b:User {user_str_id: $user2})
		 WHERE NOT (a)-[:FRIENDS_WITH]-(b)
		 CREATE (a)-[:FRIENDS_WITH {created_at: $created_at}]->(b)
		 RETURN count(*) AS created`,
		map[string]any{
			"user1":      conn.User1StrID,
			"user2":      conn.User2StrID,
			"created_at": time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("neo4j: creating connection %s-%s: %w", conn.User1StrID, conn.User2StrID, err)
	}

	created, err := countValue(res, "created")
	if err != nil {
		return err
	}
	if created > 0 {
		return nil
	}

	exists, err := s.ConnectionExists(ctx, conn)
	if err != nil {
		return err
	}
	if exists {
		return apperror.AlreadyConnected()
	}
	return fmt.Errorf("neo4j: creating connection %s-%s: endpoint user missing", conn.User1StrID, conn.User2StrID)
}

// DeleteConnection removes the edge in whichever direction it was stored.
func (s *Store) DeleteConnection(ctx context.Context, conn model.Connection) error {
	res, err := s.run.Run(ctx,
		`MATCH (:User {user_str_id: $user1})-[r:FRIENDS_WITH]-(:User {user_str_id: $user2})
		 WITH collect(r) AS rels
		 FOREACH (rel IN rels | DELETE rel)
		 RETURN size(rels) AS deleted`,
		map[string]any{"user1": conn.User1StrID, "user2": conn.User2StrID},
	)
	if err != nil {
		return fmt.Errorf("neo4j: deleting connection %s-%s: %w", conn.User1StrID, conn.User2StrID, err)
	}

	deleted, err := countValue(res, "deleted")
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.NotConnected()
	}
	return nil
}

func (s *Store) ConnectionExists(ctx context.Context, conn model.Connection) (bool, error) {
	res, err := s.run.Run(ctx,
		`MATCH (:User {user_str_id: $user1})-[r:FRIENDS_WITH]-(:User {user_str_id: $user2})
		 RETURN count(r) AS n`,
		map[string]any{"user1": conn.User1StrID, "user2": conn.User2StrID},
	)
	if err != nil {
		return false, fmt.Errorf("neo4j: checking connection %s-%s: %w", conn.User1StrID, conn.User2StrID, err)
	}

	n, err := countValue(res, "n")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListConnections returns every edge in canonical form, sorted.
func (s *Store) ListConnections(ctx context.Context) ([]model.Connection, error) {
	res, err := s.run.Run(ctx,
		`MATCH (a:User)-[:FRIENDS_WITH]->(b:User)
		 RETURN a.user_str_id AS user1, b.user_str_id AS user2
		 ORDER BY user1, user2`,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("neo4j: listing connections: %w", err)
	}

	conns := make([]model.Connection, 0, len(res.Records))
	for _, rec := range res.Records {
		a, err := stringValue(rec, "user1")
		if err != nil {
			return nil, err
		}
		b, err := stringValue(rec, "user2")
		if err != nil {
			return nil, err
		}
		// Re-canonicalize so an edge written by another client in the
		// "wrong" direction still comes back in one form.
		conns = append(conns, model.Canonicalize(a, b))
	}
	return conns, nil
}

func (s *Store) NeighborIDs(ctx context.Context, userStrID string) ([]string, error) {
	res, err := s.run.Run(ctx,
		`MATCH (:User {user_str_id: $id})-[:FRIENDS_WITH]-(n:User)
		 RETURN DISTINCT n.user_str_id AS id
		 ORDER BY id`,
		map[string]any{"id": userStrID},
	)
	if err != nil {
		return nil, fmt.Errorf("neo4j: loading neighbors of %q: %w", userStrID, err)
	}

	ids := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		id, err := stringValue(rec, "id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// =========================================================================
// RESULT HELPERS
// =========================================================================

func stringValue(rec *neo4j.Record, key string) (string, error) {
	v, isNil, err := neo4j.GetRecordValue[string](rec, key)
	if err != nil {
		return "", fmt.Errorf("neo4j: reading %q: %w", key, err)
	}
	if isNil {
		return "", fmt.Errorf("neo4j: reading %q: value is null", key)
	}
	return v, nil
}

// countValue reads an integer column from the first record of a single-row
// aggregate result.
func countValue(res *neo4j.EagerResult, key string) (int64, error) {
	if len(res.Records) == 0 {
		return 0, nil
	}
	n, _, err := neo4j.GetRecordValue[int64](res.Records[0], key)
	if err != nil {
		return 0, fmt.Errorf("neo4j: reading %q: %w", key, err)
	}
	return n, nil
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == codeUnique
}

// executor is the production runner: every call goes through
// neo4j.ExecuteQuery, which manages sessions, transactions and retries.
type executor struct {
	driver   neo4j.DriverWithContext
	database string
}

func (e *executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if e.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(e.database))
	}
	return neo4j.ExecuteQuery(ctx, e.driver, query, params, neo4j.EagerResultTransformer, opts...)
}
