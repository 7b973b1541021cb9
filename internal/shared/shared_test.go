package shared

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		id := GenerateID()
		millis, ok := strings.CutPrefix(id, "ex_")
		if !ok {
			t.Fatalf("id %q lacks the ex_ prefix", id)
		}
		if _, err := strconv.ParseInt(millis, 10, 64); err != nil {
			t.Errorf("id %q does not end in a timestamp: %v", id, err)
		}
	})

	t.Run("strictly increasing", func(t *testing.T) {
		prev := int64(0)
		for range 1000 {
			n, _ := strconv.ParseInt(strings.TrimPrefix(GenerateID(), "ex_"), 10, 64)
			if n <= prev {
				t.Fatalf("id %d not greater than %d", n, prev)
			}
			prev = n
		}
	})
}

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == b || len(a) != 36 {
		t.Errorf("unexpected request ids %q %q", a, b)
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "component=test") {
			t.Errorf("unexpected log output %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates the directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("written")
		if err := closer.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"a": 1}
	compact, _ := MarshalJSON(v, false)
	pretty, _ := MarshalJSON(v, true)
	if string(compact) != `{"a":1}` {
		t.Errorf("compact = %s", compact)
	}
	if string(pretty) != "{\n  \"a\": 1\n}" {
		t.Errorf("pretty = %s", pretty)
	}
}
