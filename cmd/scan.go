package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/model"
	"github.com/quartzclay/reclaim/internal/scanner"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()
var duplicatesFlag bool
var noSaveFlag bool

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for development artifacts and report their size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			minSize, err := thresholdMB()
			if err != nil {
				return err
			}

			res, err := newScanner().Scan(cfg.TargetPath, minSize)
			if err != nil {
				return err
			}

			if rec, ok := auditLog.(interface {
				Discovery(model.Path, float64, string)
			}); ok {
				for _, a := range res.Artifacts {
					rec.Discovery(a.Path, a.SizeMB(), a.Category)
				}
			}

			report := scanner.BuildReport(res)
			ui.RenderScanReport(report)

			if duplicatesFlag {
				renderDuplicates(cmd, res.Artifacts)
			}

			if noSaveFlag {
				return nil
			}

			path, err := saveReport(report)
			if err != nil {
				return err
			}

			cmd.Printf("\nReport saved: %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVar(&duplicatesFlag, "duplicates", false, "list artifact groups sharing a pattern and size")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "skip writing the JSON report")

	return cmd
}

func renderDuplicates(cmd *cobra.Command, artifacts []model.Artifact) {
	groups := scanner.FindDuplicates(artifacts)
	if len(groups) == 0 {
		return
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	cmd.Println("\nPOSSIBLE DUPLICATES")

	for _, key := range keys {
		group := groups[key]
		cmd.Printf("%s (%d paths):\n", group[0].Pattern, len(group))

		for _, a := range group {
			cmd.Printf("  %s (%.2f MB)\n", a.Path, a.SizeMB())
		}
	}
}

// saveReport writes the report JSON into the configured reports directory.
func saveReport(report model.ScanReport) (string, error) {
	if err := os.MkdirAll(cfg.Reports.Dir, 0o750); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := filepath.Join(cfg.Reports.Dir, fmt.Sprintf("reclaim_scan_%d.json", time.Now().Unix()))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return path, nil
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
