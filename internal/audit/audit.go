// Package audit provides the narrow logging interface the scanner and nuker
// report through, plus a file-backed implementation that keeps a JSON audit
// trail of every discovery and deletion.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quartzclay/reclaim/internal/model"
)

// Logger is the only logging surface the core components call. They never
// format or persist log output themselves.
type Logger interface {
	// Error records a per-path or per-operation failure with a context tag
	// such as "safety_check" or "pre_deletion_validation".
	Error(err error, context string)
	// Deletion records a performed or simulated deletion.
	Deletion(path model.Path, sizeMB float64, dryRun bool)
	// ScanStart records the beginning of a scan over root.
	ScanStart(root model.Path, categories int)
}

// Entry is one audit-trail record.
type Entry struct {
	Timestamp string  `json:"timestamp"`
	Action    string  `json:"action"`
	Path      string  `json:"path,omitempty"`
	SizeMB    float64 `json:"size_mb,omitempty"`
	DryRun    bool    `json:"dry_run,omitempty"`
	Context   string  `json:"context,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// FileLogger writes human-readable log lines through slog and accumulates
// the audit trail in memory until exported.
type FileLogger struct {
	log     *slog.Logger
	logPath string
	file    *os.File

	mu    sync.Mutex
	trail []Entry
}

// New opens (or creates) the log file at logPath and returns a ready logger.
// level is one of "debug", "info", "warn", "error".
func New(logPath, level string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(level)})

	return &FileLogger{
		log:     slog.New(handler),
		logPath: logPath,
		file:    f,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error implements Logger.
func (l *FileLogger) Error(err error, context string) {
	l.log.Error("operation failed", "context", context, "err", err)
	l.append(Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Action:    "error",
		Context:   context,
		Error:     err.Error(),
	})
}

// Deletion implements Logger.
func (l *FileLogger) Deletion(path model.Path, sizeMB float64, dryRun bool) {
	action := "deleted"
	if dryRun {
		action = "simulated_deletion"
	}

	l.log.Info(action, "path", string(path), "size_mb", round2(sizeMB))
	l.append(Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Action:    action,
		Path:      string(path),
		SizeMB:    round2(sizeMB),
		DryRun:    dryRun,
	})
}

// ScanStart implements Logger.
func (l *FileLogger) ScanStart(root model.Path, categories int) {
	l.log.Info("scan started", "root", string(root), "categories", categories)
	l.append(Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Action:    "scan_start",
		Path:      string(root),
	})
}

// Discovery records a found artifact in the audit trail.
func (l *FileLogger) Discovery(path model.Path, sizeMB float64, category string) {
	l.log.Info("artifact found", "path", string(path), "size_mb", round2(sizeMB), "category", category)
	l.append(Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Action:    "discovered",
		Path:      string(path),
		SizeMB:    round2(sizeMB),
		Context:   category,
	})
}

func (l *FileLogger) append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trail = append(l.trail, e)
}

// Trail returns a copy of the audit entries recorded so far.
func (l *FileLogger) Trail() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Entry(nil), l.trail...)
}

type auditExport struct {
	SessionID string       `json:"session_id"`
	Entries   []Entry      `json:"entries"`
	Summary   auditSummary `json:"summary"`
}

type auditSummary struct {
	TotalEntries int `json:"total_entries"`
	Deletions    int `json:"deletions"`
	Discoveries  int `json:"discoveries"`
}

// ExportAudit writes the audit trail as JSON next to the log file and returns
// the path written.
func (l *FileLogger) ExportAudit() (string, error) {
	entries := l.Trail()

	summary := auditSummary{TotalEntries: len(entries)}
	for _, e := range entries {
		switch e.Action {
		case "deleted":
			summary.Deletions++
		case "discovered":
			summary.Discoveries++
		}
	}

	export := auditExport{
		SessionID: time.Now().Format(time.RFC3339),
		Entries:   entries,
		Summary:   summary,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal audit log: %w", err)
	}

	path := strings.TrimSuffix(l.logPath, filepath.Ext(l.logPath)) + ".audit.json"
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write audit log: %w", err)
	}

	return path, nil
}

// Close releases the underlying log file.
func (l *FileLogger) Close() error {
	return l.file.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything. Used in tests and as a
// fallback when no log sink is configured.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Error(error, string)                {}
func (nopLogger) Deletion(model.Path, float64, bool) {}
func (nopLogger) ScanStart(model.Path, int)          {}
