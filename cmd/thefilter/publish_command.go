package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nycterent/thefilter/internal/lint"
	"github.com/nycterent/thefilter/internal/pipeline"
	"github.com/nycterent/thefilter/internal/runs"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var goldenFlag string
	var titleFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish <source>",
		Short: "Validate, publish, and verify one newsletter issue",
		Long: `Publish creates a run for the source and drives it synchronously to a
terminal state: lint, create and send the platform draft, then probe the
public archive until the issue is live. --dry-run stops after validation
without touching the platform.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if golden := strings.TrimSpace(goldenFlag); golden != "" {
				cfg.Lint.GoldenSource = golden
			}
			if !dryRun {
				if err := cfg.RequireAPIKey(); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			unlock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer unlock()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Create(cmd.Context(), args[0], strings.TrimSpace(titleFlag))
			if err != nil {
				return err
			}

			mgr := pipeline.NewManager(cfg, store, logger)
			if dryRun {
				err = mgr.ProcessRunUntil(cmd.Context(), run, runs.StatusValidated)
			} else {
				err = mgr.ProcessRun(cmd.Context(), run)
			}
			if err != nil && !run.Status.IsTerminal() {
				return err
			}

			printRunOutcome(cmd.OutOrStdout(), run, dryRun)
			if run.Status.IsTerminal() && run.Status != runs.StatusSucceeded {
				return &exitError{code: 1, err: fmt.Errorf("run %d %s: %s", run.ID, run.Status, run.ErrorMessage)}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goldenFlag, "golden", "", "Golden reference source for the section parity rule")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Subject line override (skips issue numbering)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Stop after validation without publishing")
	return cmd
}

func printRunOutcome(out io.Writer, run *runs.Run, dryRun bool) {
	switch {
	case run.Status == runs.StatusSucceeded:
		fmt.Fprintf(out, "Run %d succeeded: %s\n", run.ID, run.Title)
		if run.EmailURL != "" {
			fmt.Fprintf(out, "Archive: %s\n", run.EmailURL)
		}
		fmt.Fprintf(out, "Attempts: %d\n", len(run.Attempts))
	case dryRun && run.Status == runs.StatusValidated:
		fmt.Fprintf(out, "Run %d validated (dry run, not published)\n", run.ID)
	default:
		fmt.Fprintf(out, "Run %d %s: %s\n", run.ID, run.Status, run.ErrorMessage)
	}

	if run.Status == runs.StatusRejected && run.ReportJSON != "" {
		if report, err := lint.Decode([]byte(run.ReportJSON)); err == nil {
			printReport(out, report)
		}
	}
}
