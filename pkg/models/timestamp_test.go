package models

import (
	"encoding/json"
	"testing"
)

func TestNormalizeTimestampEpochForms(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"seconds int64", int64(1700000000), 1700000000000},
		{"millis int64", int64(1700000000123), 1700000000123},
		{"seconds float", float64(1700000000), 1700000000000},
		{"seconds string", "1700000000", 1700000000000},
		{"millis string", "1700000000123", 1700000000123},
	}
	for _, c := range cases {
		got, err := NormalizeTimestamp(c.in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestNormalizeTimestampTextual(t *testing.T) {
	got, err := NormalizeTimestamp("2023-11-14T22:13:20Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1700000000000 {
		t.Errorf("got %d, want 1700000000000", got)
	}
	// no zone given: interpreted as UTC
	got2, err := NormalizeTimestamp("2023-11-14 22:13:20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got2 != got {
		t.Errorf("space layout got %d, want %d", got2, got)
	}
}

func TestNormalizeTimestampRejects(t *testing.T) {
	for _, in := range []any{nil, "", "not a time", struct{}{}} {
		if _, err := NormalizeTimestamp(in); err == nil {
			t.Errorf("expected error for %#v", in)
		}
	}
}

func TestFlexTimeUnmarshal(t *testing.T) {
	var e PushEvent
	payload := `{"kind":"message","chat_id":"c1","id":"m1","ts":"1700000000"}`
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.TS.Millis() != 1700000000000 {
		t.Errorf("ts = %d, want 1700000000000", e.TS.Millis())
	}
}
