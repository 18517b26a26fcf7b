// Package cmd provides the root command and CLI setup for reclaim.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/audit"
	"github.com/quartzclay/reclaim/internal/catalog"
	"github.com/quartzclay/reclaim/internal/config"
	"github.com/quartzclay/reclaim/internal/controller"
	"github.com/quartzclay/reclaim/internal/scanner"
)

var cfg config.Config
var patterns *catalog.Catalog
var auditLog audit.Logger
var ui controller.UI

var configFlag string
var patternsFlag string
var targetFlag string
var thresholdFlag string
var parallelFlag int

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reclaim",
		Short: "Find and remove development build artifacts",
		Long: `Reclaim scans a directory tree for development artifacts such as
node_modules, virtualenvs and build caches, reports the disk space they
occupy, and deletes them with layered safety checks.

Run "reclaim scan" to see what would be reclaimed, then "reclaim clean"
to remove it.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return teardown()
		},
	}

	cmd.PersistentFlags().StringVar(&configFlag, "config", defaultConfigPath(), "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&patternsFlag, "patterns", "", "path to a custom pattern catalog (default: built-in)")
	cmd.PersistentFlags().StringVarP(&targetFlag, "target", "t", "", "directory to scan (default: configured target)")
	cmd.PersistentFlags().StringVar(&thresholdFlag, "threshold", "", `minimum artifact size, e.g. "50MB" or "1GB"`)
	cmd.PersistentFlags().IntVarP(&parallelFlag, "parallel", "p", 0, "scan worker count (default: configured)")

	return cmd
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}

	return filepath.Join(home, ".reclaim", "config.yaml")
}

// setup loads configuration and wires the collaborators every subcommand
// shares. Flags override the file.
func setup(cmd *cobra.Command, _ []string) error {
	var err error

	cfg, err = config.Load(configFlag)
	if err != nil {
		return err
	}

	if targetFlag != "" {
		cfg.TargetPath = targetFlag
	}

	if thresholdFlag != "" {
		cfg.SizeThresholds.MinimumFileSize = thresholdFlag
	}

	if parallelFlag > 0 {
		cfg.Performance.MaxWorkers = parallelFlag
	}

	patterns, err = catalog.Load(patternsFlag)
	if err != nil {
		return err
	}

	auditLog, err = audit.New(cfg.Logging.LogPath, cfg.Logging.LogLevel)
	if err != nil {
		return err
	}

	ui = controller.NewUI(cmd, cmd.InOrStdin(), controller.IsTTY(os.Stdout))

	return nil
}

func teardown() error {
	if closer, ok := auditLog.(interface{ Close() error }); ok {
		return closer.Close()
	}

	return nil
}

// newScanner builds a scanner from the active configuration.
func newScanner() *scanner.Scanner {
	return scanner.New(
		patterns,
		scanner.NewWhitelist(cfg.WhitelistPaths),
		scanner.Options{
			FollowSymlinks: cfg.DeletionBehavior.FollowSymlinks,
			Workers:        cfg.Performance.MaxWorkers,
		},
		auditLog,
	)
}

// thresholdMB resolves the active minimum artifact size.
func thresholdMB() (float64, error) {
	return config.ParseSizeMB(cfg.SizeThresholds.MinimumFileSize)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
