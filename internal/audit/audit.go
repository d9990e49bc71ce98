package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

var jsonMarshal = json.Marshal

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Event is one tool invocation as written to the audit stream.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	CallID     string    `json:"callId"`
	Tool       string    `json:"tool"`
	Toolset    string    `json:"toolset,omitempty"`
	ProjectID  string    `json:"projectId,omitempty"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"errorKind,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
}

// Logger writes one JSON object per line. It is safe for concurrent use and a
// nil Logger discards events.
type Logger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewLogger(out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out}
}

func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := jsonMarshal(event)
	if err != nil {
		return
	}
	_, _ = l.out.Write(append(data, '\n'))
}
