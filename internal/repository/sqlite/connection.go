package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/model"
)

// InsertConnection stores a canonical edge. The composite primary key turns
// a second insert of the same pair into a constraint error.
func (db *DB) InsertConnection(ctx context.Context, conn model.Connection) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO connections (user1_str_id, user2_str_id) VALUES (?, ?)`,
		conn.User1StrID, conn.User2StrID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyConnected()
		}
		return fmt.Errorf("sqlite: inserting connection %s-%s: %w", conn.User1StrID, conn.User2StrID, err)
	}
	return nil
}

// DeleteConnection removes a canonical edge.
//
// ROWS AFFECTED:
// DELETE on a missing row is not an SQL error, it just affects zero rows.
// RowsAffected is how we tell "deleted" from "was never there".
func (db *DB) DeleteConnection(ctx context.Context, conn model.Connection) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM connections WHERE user1_str_id = ? AND user2_str_id = ?`,
		conn.User1StrID, conn.User2StrID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting connection %s-%s: %w", conn.User1StrID, conn.User2StrID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotConnected()
	}
	return nil
}

func (db *DB) ConnectionExists(ctx context.Context, conn model.Connection) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM connections WHERE user1_str_id = ? AND user2_str_id = ?
		)`,
		conn.User1StrID, conn.User2StrID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking connection %s-%s: %w", conn.User1StrID, conn.User2StrID, err)
	}
	return exists, nil
}

// ListConnections returns every edge ordered by (user1_str_id, user2_str_id).
func (db *DB) ListConnections(ctx context.Context) ([]model.Connection, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user1_str_id, user2_str_id FROM connections
		 ORDER BY user1_str_id, user2_str_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing connections: %w", err)
	}
	defer rows.Close()

	conns := []model.Connection{}
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.User1StrID, &c.User2StrID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning connection row: %w", err)
		}
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating connection rows: %w", err)
	}
	return conns, nil
}

// NeighborIDs returns everyone sharing an edge with userStrID, sorted.
// The user can sit in either column, so both halves are unioned.
func (db *DB) NeighborIDs(ctx context.Context, userStrID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user2_str_id FROM connections WHERE user1_str_id = ?
		 UNION
		 SELECT user1_str_id FROM connections WHERE user2_str_id = ?
		 ORDER BY 1`,
		userStrID, userStrID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading neighbors of %q: %w", userStrID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning neighbor row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating neighbor rows: %w", err)
	}
	return ids, nil
}
