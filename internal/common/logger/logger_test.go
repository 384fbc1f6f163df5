package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := attach(newBase(&buf), "kitchen")

	l.With(map[string]any{"cook": 2}).Error("order_failed", errors.New("boom"), map[string]any{"order_id": 7})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]any{
		"service":  "kitchen",
		"action":   "order_failed",
		"message":  "order_failed",
		"level":    "error",
		"error":    "boom",
		"cook":     float64(2),
		"order_id": float64(7),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestDebugFilteredAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := attach(newBase(&buf), "kitchen")
	l.Debug("noise", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %q", buf.String())
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure("loud", nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
