// Package transcript writes an append-only NDJSON record of every turn, one
// file per user and session.
package transcript

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Direction says whether an entry was received or sent.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Entry is one transcript line.
type Entry struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Channel   string    `json:"channel"`
	Direction Direction `json:"direction"`
	Intent    string    `json:"intent,omitempty"`
	Source    string    `json:"source,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// Config controls transcript writing.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Logger records transcript entries.
type Logger interface {
	Log(entry Entry)
	Close() error
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Log(Entry)    {}
func (Nop) Close() error { return nil }

// FileLogger appends entries to <dir>/<user>/<session>.ndjson from a single
// background writer. Entries are dropped when the queue is full.
type FileLogger struct {
	dir    string
	queue  chan Entry
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// New returns a FileLogger, or Nop when transcripts are disabled.
func New(cfg Config, logger *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	if cfg.Dir == "" {
		return nil, errors.New("transcript: dir cannot be empty")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("transcript: create dir: %w", err)
	}

	l := &FileLogger{
		dir:    cfg.Dir,
		queue:  make(chan Entry, cfg.QueueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Log queues entry for writing. It never blocks.
func (l *FileLogger) Log(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- entry:
	default:
		l.logger.Warn("Transcript queue full, dropping entry", "session_id", entry.SessionID, "direction", entry.Direction)
	}
}

// Close flushes queued entries and stops the writer.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *FileLogger) run() {
	defer close(l.done)
	for entry := range l.queue {
		if err := l.write(entry); err != nil {
			l.logger.Error("Failed to write transcript entry", "session_id", entry.SessionID, "error", err)
		}
	}
}

func (l *FileLogger) write(entry Entry) error {
	line, err := sonic.ConfigStd.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	path := l.Path(entry.UserID, entry.SessionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Path returns the file entries for a user and session are written to.
func (l *FileLogger) Path(userID, sessionID string) string {
	return filepath.Join(l.dir, safeName(userID), safeName(sessionID)+".ndjson")
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.+-]`)

func safeName(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "" || s == "." || s == ".." {
		return "unknown"
	}
	return s
}
