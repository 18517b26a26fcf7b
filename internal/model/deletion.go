package model

import "time"

// DeletionMode selects the orchestration policy for a batch of deletions.
type DeletionMode int

// Available deletion modes.
const (
	// ModeDryRun simulates every deletion without touching the filesystem.
	ModeDryRun DeletionMode = iota
	// ModeInteractive asks the confirmation callback before each deletion.
	ModeInteractive
	// ModeForce deletes every validated artifact concurrently.
	ModeForce
	// ModeSafe deletes directly but demands confirmation for large or
	// shallow artifacts.
	ModeSafe
)

// String returns the snake_case name used in logs and manifests.
func (m DeletionMode) String() string {
	switch m {
	case ModeDryRun:
		return "dry_run"
	case ModeInteractive:
		return "interactive"
	case ModeForce:
		return "force"
	case ModeSafe:
		return "safe"
	default:
		return "unknown"
	}
}

// DeletionResult is the outcome of one deletion attempt. Results are created
// by the executor and never mutated afterwards.
type DeletionResult struct {
	Path    Path
	Success bool
	// FreedMB is the size reclaimed by a successful deletion, 0 on failure.
	FreedMB  float64
	Err      error
	Duration time.Duration
	Mode     DeletionMode
}

// DestructionMetrics aggregates the results of the most recent deletion batch.
type DestructionMetrics struct {
	TotalOperations   int           `json:"total_operations"`
	Successful        int           `json:"successful_deletions"`
	Failed            int           `json:"failed_deletions"`
	TotalFreedMB      float64       `json:"total_freed_mb"`
	TotalFreedGB      float64       `json:"total_freed_gb"`
	AverageDurationMS float64       `json:"average_duration_ms"`
	Errors            []ReportError `json:"errors"`
}

// UndoEntry documents one attempted deletion in the undo manifest.
type UndoEntry struct {
	Path    string  `json:"path"`
	SizeMB  float64 `json:"size_mb"`
	Success bool    `json:"success"`
	Mode    string  `json:"mode"`
}

// UndoManifest is a best-effort record of what a batch deleted. It is
// documentation only, not a restore mechanism.
type UndoManifest struct {
	Timestamp int64       `json:"timestamp"`
	Deletions []UndoEntry `json:"deletions"`
}
