package controller

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

// SimpleUI renders through the cobra command's output stream and confirms
// via line-based input. It is the fallback for non-interactive terminals
// and the workhorse for tests.
type SimpleUI struct {
	cmd *cobra.Command
	// Buffered once so consecutive confirmations keep their place in the
	// input stream.
	in *bufio.Reader
}

// NewSimpleUI creates a SimpleUI reading confirmations from in.
func NewSimpleUI(cmd *cobra.Command, in io.Reader) *SimpleUI {
	return &SimpleUI{cmd: cmd, in: bufio.NewReader(in)}
}

// RenderScanReport implements UI.
func (s *SimpleUI) RenderScanReport(report model.ScanReport) {
	s.printf("%s\n", titleStyle.Render("SCAN RESULTS"))
	s.printf("Artifacts found: %d\n", report.Summary.TotalArtifacts)
	s.printf("Total size: %.2f MB (%.2f GB)\n", report.Summary.TotalSizeMB, report.Summary.TotalSizeGB)
	s.printf("Categories: %d\n", report.Summary.UniqueCategories)

	if report.Summary.ScanErrors > 0 {
		s.printf("%s\n", warnStyle.Render(fmt.Sprintf("Scan errors: %d", report.Summary.ScanErrors)))
	}

	if len(report.Categories) > 0 {
		s.printf("\n%s", renderCategoryTable(report.Categories))
	}

	if len(report.TopArtifacts) > 0 {
		s.printf("\n%s", renderTopTable(report.TopArtifacts))
	}

	for _, e := range report.Errors {
		s.printf("%s\n", dimStyle.Render(fmt.Sprintf("error: %s: %s", e.Path, e.Error)))
	}
}

func renderCategoryTable(categories map[string]model.CategoryStat) string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}

	sort.Strings(names)

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Category", "Count", "Size (MB)"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	for _, name := range names {
		stat := categories[name]
		table.Append([]string{name, fmt.Sprintf("%d", stat.Count), fmt.Sprintf("%.2f", stat.SizeMB)})
	}

	table.Render()

	return buf.String()
}

func renderTopTable(top []model.TopArtifact) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Size (MB)", "Category"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for _, a := range top {
		table.Append([]string{a.Path, fmt.Sprintf("%.2f", a.SizeMB), a.Category})
	}

	table.Render()

	return buf.String()
}

// RenderCleanupSummary implements UI.
func (s *SimpleUI) RenderCleanupSummary(metrics model.DestructionMetrics) {
	s.printf("%s\n", titleStyle.Render("CLEANUP SUMMARY"))
	s.printf("Deleted: %d of %d (%.2f MB freed)\n", metrics.Successful, metrics.TotalOperations, metrics.TotalFreedMB)

	if metrics.Failed > 0 {
		s.printf("%s\n", warnStyle.Render(fmt.Sprintf("Failed: %d", metrics.Failed)))

		for _, e := range metrics.Errors {
			s.printf("  %s: %s\n", e.Path, e.Error)
		}
	}
}

// Confirm implements UI. Only an explicit "y"/"yes" approves; anything else,
// including a read failure, declines.
func (s *SimpleUI) Confirm(a model.Artifact) bool {
	s.printf("Delete %s (%.2f MB, %s)? [y/N] ", a.Path, a.SizeMB(), a.Category)

	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
