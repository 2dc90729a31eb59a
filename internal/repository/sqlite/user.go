package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/model"
)

// CreateUser inserts a new user row.
//
// The internal ID is generated here with xid (globally unique, sortable by
// creation time, 20 characters). The UNIQUE index on user_str_id is what
// detects a duplicate registration; we translate that into the domain error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, user_str_id, display_name, created_at)
		 VALUES (?, ?, ?, ?)`,
		id,
		user.UserStrID,
		user.DisplayName,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists(user.UserStrID)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.UserStrID, err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

// UserExists reports whether a user with the given external id is registered.
func (db *DB) UserExists(ctx context.Context, userStrID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_str_id = ?)`,
		userStrID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user %q: %w", userStrID, err)
	}
	return exists, nil
}

// GetUsers loads the users whose user_str_id is in ids, ordered by user_str_id.
//
// database/sql has no slice binding, so the IN list is built with one "?"
// per id. Only placeholders are formatted into the query; the ids themselves
// still travel as bound arguments.
func (db *DB) GetUsers(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, user_str_id, display_name, created_at
		 FROM users WHERE user_str_id IN (%s)
		 ORDER BY user_str_id`, placeholders(len(ids))),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, len(ids))
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.UserStrID, &u.DisplayName, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}
