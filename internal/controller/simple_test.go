package controller

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzclay/reclaim/internal/model"
)

func newCaptureCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	return cmd, buf
}

func TestRenderScanReport(t *testing.T) {
	cmd, buf := newCaptureCmd()
	ui := NewSimpleUI(cmd, strings.NewReader(""))

	report := model.ScanReport{
		Summary: model.ScanSummary{
			TotalArtifacts:   3,
			TotalSizeMB:      1536.5,
			TotalSizeGB:      1.5,
			UniqueCategories: 2,
			ScanErrors:       1,
		},
		Categories: map[string]model.CategoryStat{
			"dependencies.node": {Count: 2, SizeMB: 1024.25},
			"build.caches":      {Count: 1, SizeMB: 512.25},
		},
		TopArtifacts: []model.TopArtifact{
			{Path: "/home/u/dev/app/node_modules", SizeMB: 900, Category: "dependencies.node"},
		},
		Errors: []model.ReportError{
			{Path: "/home/u/locked", Error: "permission denied"},
		},
	}

	ui.RenderScanReport(report)

	out := buf.String()

	assert.Contains(t, out, "Artifacts found: 3")
	assert.Contains(t, out, "1536.50 MB")
	assert.Contains(t, out, "Scan errors: 1")
	assert.Contains(t, out, "node_modules")
	assert.Contains(t, out, "permission denied")

	// Category table sorts by name.
	buildIdx := strings.Index(out, "build.caches")
	nodeIdx := strings.Index(out, "dependencies.node")
	require.GreaterOrEqual(t, buildIdx, 0)
	require.GreaterOrEqual(t, nodeIdx, 0)
	assert.Less(t, buildIdx, nodeIdx)
}

func TestRenderCleanupSummary(t *testing.T) {
	t.Run("all successful", func(t *testing.T) {
		cmd, buf := newCaptureCmd()
		ui := NewSimpleUI(cmd, strings.NewReader(""))

		ui.RenderCleanupSummary(model.DestructionMetrics{
			TotalOperations: 4,
			Successful:      4,
			TotalFreedMB:    256.5,
		})

		out := buf.String()
		assert.Contains(t, out, "Deleted: 4 of 4")
		assert.Contains(t, out, "256.50 MB freed")
		assert.NotContains(t, out, "Failed")
	})

	t.Run("failures are listed", func(t *testing.T) {
		cmd, buf := newCaptureCmd()
		ui := NewSimpleUI(cmd, strings.NewReader(""))

		ui.RenderCleanupSummary(model.DestructionMetrics{
			TotalOperations: 2,
			Successful:      1,
			Failed:          1,
			TotalFreedMB:    10,
			Errors: []model.ReportError{
				{Path: "/home/u/dev/app/.cache", Error: "busy"},
			},
		})

		out := buf.String()
		assert.Contains(t, out, "Failed: 1")
		assert.Contains(t, out, "/home/u/dev/app/.cache: busy")
	})
}

func TestSimpleConfirm(t *testing.T) {
	artifact := model.Artifact{
		Path:      "/home/u/dev/app/node_modules",
		SizeBytes: 5 * 1024 * 1024,
		Category:  "dependencies.node",
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase yes", "Y\n", true},
		{"no", "n\n", false},
		{"empty line declines", "\n", false},
		{"garbage declines", "maybe\n", false},
		{"closed input declines", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, buf := newCaptureCmd()
			ui := NewSimpleUI(cmd, strings.NewReader(tt.input))

			got := ui.Confirm(artifact)

			assert.Equal(t, tt.want, got)
			assert.Contains(t, buf.String(), "[y/N]")
			assert.Contains(t, buf.String(), "node_modules")
		})
	}
}

func TestSimpleConfirmSequential(t *testing.T) {
	// Consecutive confirmations share one buffered reader, so the second
	// answer is not swallowed by the first read.
	cmd, _ := newCaptureCmd()
	ui := NewSimpleUI(cmd, strings.NewReader("y\nn\ny\n"))

	a := model.Artifact{Path: "/home/u/dev/app/.cache", SizeBytes: 1024}

	assert.True(t, ui.Confirm(a))
	assert.False(t, ui.Confirm(a))
	assert.True(t, ui.Confirm(a))
}

func TestNewUI(t *testing.T) {
	cmd, _ := newCaptureCmd()

	if _, ok := NewUI(cmd, strings.NewReader(""), true).(*TUI); !ok {
		t.Error("tty should select the interactive UI")
	}

	if _, ok := NewUI(cmd, strings.NewReader(""), false).(*SimpleUI); !ok {
		t.Error("non-tty should select the plain UI")
	}
}
