package model

import (
	"encoding/json"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		id1, id2 string
		want     Connection
	}{
		{"already ordered", "alice", "bob", Connection{"alice", "bob"}},
		{"reversed", "bob", "alice", Connection{"alice", "bob"}},
		{"same id", "carol", "carol", Connection{"carol", "carol"}},
		{"byte order not locale order", "Zed", "alice", Connection{"Zed", "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.id1, tt.id2); got != tt.want {
				t.Errorf("Canonicalize(%q, %q) = %+v, want %+v", tt.id1, tt.id2, got, tt.want)
			}
			if got := Canonicalize(tt.id2, tt.id1); got != tt.want {
				t.Errorf("Canonicalize(%q, %q) = %+v, want %+v", tt.id2, tt.id1, got, tt.want)
			}
		})
	}
}

func TestDegreeJSON(t *testing.T) {
	tests := []struct {
		name   string
		degree Degree
		want   string
	}{
		{"self", Separation(0), `{"degree":0}`},
		{"three hops", Separation(3), `{"degree":3}`},
		{"not connected", NotConnected, `{"degree":-1,"message":"not_connected"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.degree)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("Marshal() = %s, want %s", b, tt.want)
			}

			var back Degree
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back != tt.degree {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", b, back, tt.degree)
			}
		})
	}
}

func TestDegreeZeroValueIsNotConnected(t *testing.T) {
	var d Degree
	if d != NotConnected {
		t.Error("zero Degree should equal NotConnected")
	}
	if _, ok := d.Hops(); ok {
		t.Error("zero Degree Hops() should report false")
	}
}
