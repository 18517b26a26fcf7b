// Package controller provides the output and confirmation adapters used by
// the CLI commands.
package controller

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/quartzclay/reclaim/internal/model"
)

// UI abstracts how reports are rendered and how deletions are confirmed.
// Implementations can be plain text or interactive.
type UI interface {
	// RenderScanReport prints the scan summary, the per-category
	// breakdown and the largest artifacts.
	RenderScanReport(report model.ScanReport)

	// RenderCleanupSummary prints the outcome of a deletion batch.
	RenderCleanupSummary(metrics model.DestructionMetrics)

	// Confirm asks whether one artifact should be deleted.
	Confirm(a model.Artifact) bool
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
