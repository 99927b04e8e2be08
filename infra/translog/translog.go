// Package translog is the append-only audit trail: one timestamped line per
// committed mutation. The journal never blocks or fails an operation; write
// errors are logged and the line is lost.
package translog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const logFile = "transactions.log"

// Log appends timestamped entries to <dir>/transactions.log.
type Log struct {
	mu     sync.Mutex
	f      *os.File
	logger *slog.Logger
}

// Open creates the log directory if needed and opens the journal for append.
func Open(dir string, logger *slog.Logger) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transaction log: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{f: f, logger: logger}, nil
}

// Append writes one timestamped line. Best-effort.
func (l *Log) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), line)
	if _, err := l.f.WriteString(entry); err != nil {
		l.logger.Error("transaction log write failed", "error", err)
	}
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
