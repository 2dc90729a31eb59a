package model

import "encoding/json"

// NotConnectedMessage is the wire marker for a degree query between users in
// different components of the graph.
const NotConnectedMessage = "not_connected"

// Degree is the outcome of a degree-of-separation query: either a hop count
// or "not connected". The zero value is NotConnected.
//
// Both fields are unexported, so a Degree can only be built through
// Separation or NotConnected and can never claim a hop count while also
// being disconnected.
type Degree struct {
	hops      int
	connected bool
}

// NotConnected is the Degree between two users with no path between them.
var NotConnected = Degree{}

// Separation returns a Degree of the given number of hops.
func Separation(hops int) Degree {
	return Degree{hops: hops, connected: true}
}

// Hops returns the hop count and whether the users are connected at all.
func (d Degree) Hops() (int, bool) {
	return d.hops, d.connected
}

// degreeJSON is the response shape: {"degree": 2} when connected,
// {"degree": -1, "message": "not_connected"} otherwise.
type degreeJSON struct {
	Degree  int    `json:"degree"`
	Message string `json:"message,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Degree) MarshalJSON() ([]byte, error) {
	if !d.connected {
		return json.Marshal(degreeJSON{Degree: -1, Message: NotConnectedMessage})
	}
	return json.Marshal(degreeJSON{Degree: d.hops})
}

// UnmarshalJSON implements json.Unmarshaler. Any payload carrying the
// not_connected message, or a negative degree, decodes to NotConnected.
func (d *Degree) UnmarshalJSON(b []byte) error {
	var raw degreeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Message == NotConnectedMessage || raw.Degree < 0 {
		*d = NotConnected
		return nil
	}
	*d = Separation(raw.Degree)
	return nil
}
