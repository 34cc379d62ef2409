package logger

import "testing"

func TestNew(t *testing.T) {
	if _, err := New("debug", true); err != nil {
		t.Fatalf("expected logger, got %v", err)
	}
	if _, err := New("warn", false); err != nil {
		t.Fatalf("expected logger, got %v", err)
	}
	if _, err := New("loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
}
