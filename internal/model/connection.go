package model

// Connection is an undirected friendship edge between two users.
//
// CANONICAL ORDER:
// An undirected edge {alice, bob} could be written as (alice, bob) or
// (bob, alice). To give every edge exactly one stored representation, the
// lexicographically smaller id always lives in User1StrID and the larger in
// User2StrID. Build connections with Canonicalize, never by hand.
type Connection struct {
	User1StrID string `json:"user1_str_id" db:"user1_str_id"`
	User2StrID string `json:"user2_str_id" db:"user2_str_id"`
}

// Canonicalize orders a pair of user ids so the smaller one comes first.
// Canonicalize(a, b) == Canonicalize(b, a) for every a and b.
func Canonicalize(id1, id2 string) Connection {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	return Connection{User1StrID: id1, User2StrID: id2}
}

// IsSelf reports whether both endpoints are the same user.
func (c Connection) IsSelf() bool {
	return c.User1StrID == c.User2StrID
}

// Status strings returned by the connection commands.
const (
	StatusConnectionAdded   = "connection_added"
	StatusConnectionRemoved = "connection_removed"
)
