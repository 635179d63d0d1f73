package logger

import "testing"

func TestNewAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "INFO", " warn ", "error"} {
		log, err := New(level, "api")
		if err != nil {
			t.Fatalf("new logger for %q: %v", level, err)
		}
		_ = log.Sync()
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "api"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
