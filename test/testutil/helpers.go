package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/scryptbridge/internal/events"
)

// LogCapture is a concurrency-safe sink for a JSON logger.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Logger returns a debug-level JSON logger writing to c.
func (c *LogCapture) Logger() *events.Logger {
	return events.NewTestLogger(events.DebugLevel, "json", c)
}

// Entries decodes every captured line.
func (c *LogCapture) Entries(t testing.TB) []map[string]interface{} {
	t.Helper()

	c.mu.Lock()
	data := append([]byte(nil), c.buf.Bytes()...)
	c.mu.Unlock()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())

	return entries
}

// WithMessage returns the captured entries whose msg equals msg.
func (c *LogCapture) WithMessage(t testing.TB, msg string) []map[string]interface{} {
	t.Helper()

	var matched []map[string]interface{}
	for _, e := range c.Entries(t) {
		if e["msg"] == msg {
			matched = append(matched, e)
		}
	}
	return matched
}
