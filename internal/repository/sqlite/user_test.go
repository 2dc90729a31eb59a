package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/social-connections/internal/apperror"
	"github.com/sakif/social-connections/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only for one test, so
// every test starts empty and nothing touches the disk.
//
// t.Helper() makes failures point at the caller's line; t.Cleanup closes
// the database when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, userStrID string) *model.User {
	t.Helper()
	user := &model.User{UserStrID: userStrID, DisplayName: "User " + userStrID}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", userStrID, err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{UserStrID: "alice", DisplayName: "Alice"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	err := db.CreateUser(context.Background(), &model.User{UserStrID: "alice", DisplayName: "Other"})
	if err == nil {
		t.Fatal("CreateUser() should fail for a duplicate user_str_id")
	}
	if !errors.Is(err, apperror.ErrAlreadyExists) {
		t.Errorf("CreateUser() error = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateUser_CaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	// "Alice" and "alice" are different ids.
	if err := db.CreateUser(context.Background(), &model.User{UserStrID: "Alice", DisplayName: "A"}); err != nil {
		t.Fatalf("CreateUser(Alice) error = %v", err)
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestUserExists(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	tests := []struct {
		id   string
		want bool
	}{
		{"alice", true},
		{"bob", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := db.UserExists(context.Background(), tt.id)
		if err != nil {
			t.Fatalf("UserExists(%q) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("UserExists(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestGetUsers(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	createTestUser(t, db, "carol")

	users, err := db.GetUsers(context.Background(), []string{"carol", "ghost", "alice"})
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("GetUsers() returned %d users, want 2", len(users))
	}
	if users[0].UserStrID != "alice" || users[1].UserStrID != "carol" {
		t.Errorf("GetUsers() order = [%s %s], want [alice carol]", users[0].UserStrID, users[1].UserStrID)
	}
	if users[0].ID != alice.ID || users[0].DisplayName != alice.DisplayName {
		t.Errorf("GetUsers() alice = %+v, want %+v", users[0], alice)
	}
}

func TestGetUsers_Empty(t *testing.T) {
	db := newTestDB(t)

	users, err := db.GetUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetUsers(nil) error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("GetUsers(nil) = %v, want empty", users)
	}
}

// =========================================================================
// PERSISTENCE
// =========================================================================

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "social.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	if err := db.InsertConnection(context.Background(), model.Canonicalize("alice", "bob")); err != nil {
		t.Fatalf("InsertConnection() error = %v", err)
	}
	db.Close()

	// Running migrations again on an existing file must be harmless.
	db, err = New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer db.Close()

	ok, err := db.ConnectionExists(context.Background(), model.Canonicalize("bob", "alice"))
	if err != nil {
		t.Fatalf("ConnectionExists() error = %v", err)
	}
	if !ok {
		t.Error("connection lost after reopen")
	}
}
