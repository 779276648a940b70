package node

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("warn", &buf)
	l.Info("hidden")
	l.Warn("shown", "code", "AUTH_ERR_SIG_INVALID")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "code=AUTH_ERR_SIG_INVALID") {
		t.Fatalf("warn line missing: %q", out)
	}

	buf.Reset()
	NewLogger("bogus", &buf).Debug("dbg")
	if buf.Len() != 0 {
		t.Fatalf("unknown level should default to info")
	}
}
