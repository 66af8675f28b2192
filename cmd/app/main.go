package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jgoulah/oil-notifier/internal/infra/config"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

// Exit codes let the cron wrapper tell failure stages apart.
const (
	exitOK          = 0
	exitConfig      = 1
	exitCapture     = 2
	exitAnalysis    = 3
	exitPersistence = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "oil-notifier: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func newRootCommand() *cobra.Command {
	var overrides config.Overrides

	runCheck := func(cmd *cobra.Command, args []string) error {
		app, err := initializeApp(overrides)
		if err != nil {
			return err
		}
		return app.RunCheck(cmd.Context())
	}

	root := &cobra.Command{
		Use:           "oil-notifier",
		Short:         "Read the oil tank gauge through a camera and alert on low levels",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheck,
	}
	root.PersistentFlags().StringVar(&overrides.ConfigPath, "config", "", "path to the YAML config file")
	root.PersistentFlags().StringVar(&overrides.DataDir, "data-dir", "", "directory holding the reading log and snapshots")

	check := &cobra.Command{
		Use:   "check",
		Short: "Run one gauge check (the default when no subcommand is given)",
		RunE:  runCheck,
	}

	cameras := &cobra.Command{
		Use:   "cameras",
		Short: "List cameras known to the UniFi Protect controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp(overrides)
			if err != nil {
				return err
			}
			return app.ListCameras(cmd.Context())
		},
	}

	var historyCount int
	history := &cobra.Command{
		Use:   "history",
		Short: "Print recorded readings, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp(overrides)
			if err != nil {
				return err
			}
			return app.History(cmd.Context(), historyCount)
		},
	}
	history.Flags().IntVarP(&historyCount, "count", "n", 10, "number of readings to show, 0 for all")

	root.AddCommand(check, cameras, history)
	return root
}

func exitCodeFor(err error) int {
	switch apperrors.Code(err) {
	case "capture_failed":
		return exitCapture
	case "analysis_failed":
		return exitAnalysis
	case "persistence_failed":
		return exitPersistence
	default:
		return exitConfig
	}
}
