package metrics

import (
	"encoding/json"
	"io"
	"time"
)

// LogWriter is a zerolog output that records every JSON log line in the
// Collector's ring buffer, served at /api/logs, and then forwards the raw
// bytes to next when one is set.
type LogWriter struct {
	collector *Collector
	next      io.Writer
}

// NewLogWriter creates a LogWriter feeding c and forwarding to next, which
// may be nil.
func NewLogWriter(c *Collector, next io.Writer) *LogWriter {
	return &LogWriter{collector: c, next: next}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	w.collector.AddLog(parseEntry(p))
	if w.next != nil {
		return w.next.Write(p)
	}
	return len(p), nil
}

func parseEntry(p []byte) LogEntry {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return LogEntry{Time: time.Now(), Level: "info", Message: string(p)}
	}

	entry := LogEntry{Time: time.Now(), Fields: make(map[string]string)}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "level":
			entry.Level = s
		case "message":
			entry.Message = s
		case "time":
			if parsed, err := time.Parse(time.RFC3339, s); err == nil {
				entry.Time = parsed
			}
		default:
			entry.Fields[k] = s
		}
	}
	return entry
}

var _ io.Writer = (*LogWriter)(nil)
