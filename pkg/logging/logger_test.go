package logging

import "testing"

func TestSessionIDIsStable(t *testing.T) {
	first := GetSessionID()
	second := GetSessionID()

	if first == "" {
		t.Fatal("Expected non-empty session ID")
	}
	if first != second {
		t.Errorf("Session ID changed between calls: %s vs %s", first, second)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("test")
	if logger == nil {
		t.Fatal("NewLogger returned nil logger")
	}
	defer logger.Close()

	// A fallback logger is still usable even when file logging failed.
	if err == nil && logger.LogPath() == "" {
		t.Error("Expected a log path when file logging succeeded")
	}

	if logger.SessionID() != GetSessionID() {
		t.Error("Logger session ID should match the global session")
	}

	// Log methods must not panic in either mode.
	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "msg")
	logger.Warnf("warn")
	logger.Errorf("error: %v", err)
}

func TestLoggerCloseIsIdempotent(t *testing.T) {
	logger, _ := NewLogger("test")
	if err := logger.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
