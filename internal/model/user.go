// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. They are similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered member of the social graph.
//
// TWO IDENTIFIERS:
// UserStrID is the external key chosen by the caller (e.g. "alice"). It is
// globally unique and never changes, so every edge refers to users by it.
// ID is our own internal identifier (an xid), assigned at registration, so
// storage keys stay independent of whatever naming scheme callers use.
type User struct {
	ID          string    `json:"id"           db:"id"`
	UserStrID   string    `json:"user_str_id"  db:"user_str_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// Friend is the public projection of a User returned by friend queries.
type Friend struct {
	UserStrID   string `json:"user_str_id"`
	DisplayName string `json:"display_name"`
}

// AsFriend projects a User down to the fields friend queries expose.
func (u User) AsFriend() Friend {
	return Friend{UserStrID: u.UserStrID, DisplayName: u.DisplayName}
}
