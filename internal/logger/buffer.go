// internal/logger/buffer.go
package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// LogEntry is one decoded log line kept for display.
type LogEntry struct {
	Timestamp time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"-"`
}

// LogBuffer is a fixed-size ring of recent log entries. It is an io.Writer
// fed by a JSON zap core, one entry per Write.
type LogBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	wrapped bool
	total   uint64
	notify  func()
}

func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = 200
	}
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// OnWrite registers fn to be called after every stored entry.
func (lb *LogBuffer) OnWrite(fn func()) {
	lb.mu.Lock()
	lb.notify = fn
	lb.mu.Unlock()
}

func (lb *LogBuffer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimSpace(p), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		lb.add(decodeEntry(line))
	}
	return len(p), nil
}

func decodeEntry(line []byte) LogEntry {
	var entry LogEntry
	var fields map[string]interface{}
	if err := json.Unmarshal(line, &entry); err != nil {
		return LogEntry{Timestamp: time.Now(), Level: "info", Message: string(line)}
	}
	if err := json.Unmarshal(line, &fields); err == nil {
		for _, k := range []string{"time", "level", "logger", "msg"} {
			delete(fields, k)
		}
		if len(fields) > 0 {
			entry.Fields = fields
		}
	}
	return entry
}

func (lb *LogBuffer) add(entry LogEntry) {
	lb.mu.Lock()
	lb.entries[lb.next] = entry
	lb.next = (lb.next + 1) % len(lb.entries)
	if lb.next == 0 {
		lb.wrapped = true
	}
	lb.total++
	notify := lb.notify
	lb.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Recent returns up to limit entries, oldest first. limit <= 0 returns all.
func (lb *LogBuffer) Recent(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.next
	start := 0
	if lb.wrapped {
		count = len(lb.entries)
		start = lb.next
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	out := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, lb.entries[(start+i)%len(lb.entries)])
	}
	return out
}

// Total is the number of entries ever written.
func (lb *LogBuffer) Total() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.total
}
