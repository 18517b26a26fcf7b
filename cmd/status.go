package cmd

import (
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/schedule"
)

// statusCmd represents the status command.
var statusCmd = newStatusCmd()

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show disk usage for the target volume and the schedule state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, err := disk.Usage(cfg.TargetPath)
			if err != nil {
				return err
			}

			const gb = 1024 * 1024 * 1024

			cmd.Printf("Target: %s\n", cfg.TargetPath)
			cmd.Printf("Disk: %.1f GB used of %.1f GB (%.1f%%), %.1f GB free\n",
				float64(usage.Used)/gb,
				float64(usage.Total)/gb,
				usage.UsedPercent,
				float64(usage.Free)/gb,
			)

			sched, err := schedule.New(cfg.Schedule)
			if err != nil {
				return err
			}

			printScheduleStatus(cmd, sched.Status(time.Now()))

			return nil
		},
	}
}

func printScheduleStatus(cmd *cobra.Command, st schedule.Status) {
	if !st.Enabled {
		cmd.Println("Schedule: disabled")

		return
	}

	cmd.Printf("Schedule: %s", st.Frequency)

	if !st.NextRun.IsZero() {
		cmd.Printf(", next run %s", st.NextRun.Format("2006-01-02 15:04"))
	}

	if st.SystemConfigured {
		cmd.Println(" (installed)")
	} else {
		cmd.Println(" (not installed)")
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
