package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/model"
	"github.com/quartzclay/reclaim/internal/nuker"
)

// cleanCmd represents the clean command.
var cleanCmd = newCleanCmd()
var dryRunFlag bool
var interactiveFlag bool
var forceFlag bool
var yesFlag bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the artifacts a scan finds",
		Long: `Clean scans the target directory and deletes the artifacts it finds.

Without flags it runs in safe mode: large or shallow artifacts require
confirmation, everything else is deleted outright. --dry-run only reports,
--interactive confirms every artifact, --force deletes in parallel without
asking.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			minSize, err := thresholdMB()
			if err != nil {
				return err
			}

			res, err := newScanner().Scan(cfg.TargetPath, minSize)
			if err != nil {
				return err
			}

			if len(res.Artifacts) == 0 {
				cmd.Println("Nothing to clean.")

				return nil
			}

			mode := resolveMode(dryRunFlag, interactiveFlag, forceFlag)

			confirm := ui.Confirm
			if yesFlag {
				confirm = func(model.Artifact) bool { return true }
			}

			n := nuker.New(auditLog, nuker.Options{ParallelOps: cfg.Performance.ParallelDeletions})
			n.DeleteArtifacts(res.Artifacts, mode, confirm)

			ui.RenderCleanupSummary(n.Metrics())

			manifest, err := n.WriteUndoManifest(cfg.Reports.Dir)
			if err != nil {
				return err
			}

			cmd.Printf("Undo manifest: %s\n", manifest)

			if exporter, ok := auditLog.(interface{ ExportAudit() (string, error) }); ok {
				path, err := exporter.ExportAudit()
				if err != nil {
					return err
				}

				cmd.Printf("Audit trail: %s\n", path)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false, "report what would be deleted without deleting")
	cmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "confirm every artifact before deleting")
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "delete everything in parallel without confirmation")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "answer yes to every confirmation")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "interactive", "force")

	return cmd
}

// resolveMode maps the flag combination to a deletion mode. Safe mode is the
// default: destruction beyond it is always opt-in.
func resolveMode(dryRun, interactive, force bool) model.DeletionMode {
	switch {
	case dryRun:
		return model.ModeDryRun
	case interactive:
		return model.ModeInteractive
	case force:
		return model.ModeForce
	default:
		return model.ModeSafe
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
