// Package logging writes errors and optional JSON trace entries to a shared
// log file. The terminal is owned by the UI, so nothing is printed to stdout.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "cashflow.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	sink         func(entry Entry)
)

// Entry is one structured trace record.
type Entry struct {
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Path returns the current log destination.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether Trace writes anything.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// SetSink redirects trace entries to fn instead of the log file. Tests use it
// to observe traces; pass nil to restore file output.
func SetSink(fn func(Entry)) {
	mu.Lock()
	sink = fn
	mu.Unlock()
}

// Error appends err to the log file.
func Error(err error) {
	if err == nil {
		return
	}
	mu.Lock()
	path := logPath
	mu.Unlock()

	f, ferr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", ferr)
		return
	}
	defer f.Close()

	l := log.New(f, "", log.LstdFlags)
	l.Println(err)
}

// Trace appends a structured JSON entry when tracing is enabled.
func Trace(event string, payload any) {
	mu.Lock()
	enabled := traceEnabled
	path := logPath
	out := sink
	mu.Unlock()
	if !enabled {
		return
	}

	entry := Entry{Time: time.Now().UTC(), Event: event, Payload: payload}
	if out != nil {
		out(entry)
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
		return
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
	}
}
