package lineecho

import (
	"bytes"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Interface(t *testing.T) {
	// Verify that *slog.Logger implements our Logger interface
	var _ Logger = slog.Default()
}

func TestDefaultLogger(t *testing.T) {
	logger := defaultLogger()

	if logger == nil {
		t.Fatal("defaultLogger returned nil")
	}

	if logger != slog.Default() {
		t.Error("defaultLogger did not return slog.Default()")
	}
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()

	// These should not panic
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
	logger.Error("error message", "key", "value")
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

// mockLogger records every call. Safe for concurrent use.
type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *mockLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *mockLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *mockLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *mockLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *mockLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

// count returns how many entries were logged with msg.
func (l *mockLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.msg == msg {
			n++
		}
	}
	return n
}

// sum adds up the "n" argument of every entry logged with msg.
func (l *mockLogger) sum(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, e := range l.entries {
		if e.msg != msg {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] == "n" {
				total += e.args[i+1].(int)
			}
		}
	}
	return total
}

func TestTracedConn_LogsEveryChunk(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	logger := &mockLogger{}
	traced := &tracedConn{Conn: a, logger: logger}

	go func() {
		buf := make([]byte, 3)
		for {
			if _, err := b.Read(buf); err != nil {
				return
			}
		}
	}()

	if _, err := traced.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := logger.sum("bytes sent"); got != 6 {
		t.Errorf("logged %d bytes sent, want 6", got)
	}
	if logger.count("read bytes") != 0 {
		t.Error("no read should have been logged")
	}
}

func TestConn_WarningsAreSingleLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	a, b := net.Pipe()
	b.Close()

	conn := NewConn(a, LoggerOption(logger))
	defer conn.Close()

	if _, err := conn.Receive(); err == nil {
		t.Fatal("expected receive on a closed pipe to fail")
	}
	if _, err := conn.Send([]byte("ping\n")); err == nil {
		t.Fatal("expected send on a closed pipe to fail")
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "receive stopped") || !strings.Contains(lines[0], `error="peer closed early"`) {
		t.Errorf("unexpected receive record: %s", lines[0])
	}
	if !strings.Contains(lines[1], "send stopped") {
		t.Errorf("unexpected send record: %s", lines[1])
	}
}
