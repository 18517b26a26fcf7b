package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/schedule"
)

// scheduleCmd represents the schedule command and its subcommands.
var scheduleCmd = newScheduleCmd()

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage the automated cleanup schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := schedule.New(cfg.Schedule)
			if err != nil {
				return err
			}

			printScheduleStatus(cmd, sched.Status(time.Now()))

			return nil
		},
	}

	cmd.AddCommand(newScheduleInstallCmd())
	cmd.AddCommand(newScheduleRemoveCmd())

	return cmd
}

func newScheduleInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the launchd agent for scheduled cleanups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := schedule.New(cfg.Schedule)
			if err != nil {
				return err
			}

			program, err := os.Executable()
			if err != nil {
				return err
			}

			if err := sched.Install(program); err != nil {
				auditLog.Error(err, "schedule_install")

				return err
			}

			cmd.Printf("Schedule installed: %s cleanups\n", cfg.Schedule.Frequency)

			return nil
		},
	}
}

func newScheduleRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the launchd agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := schedule.New(cfg.Schedule)
			if err != nil {
				return err
			}

			if err := sched.Remove(); err != nil {
				auditLog.Error(err, "schedule_remove")

				return err
			}

			cmd.Println("Schedule removed.")

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
