package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nycterent/thefilter/internal/pipeline"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Drain queued runs through the pipeline",
		Long: `Process rolls abandoned in-flight runs back to their resting states,
then drives every queued run to a terminal state. Without --once it keeps
polling for new runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if err := cfg.RequireAPIKey(); err != nil {
				return err
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

			mgr := pipeline.NewManager(cfg, store, logger)
			if once {
				processed, err := mgr.ProcessQueued(cmd.Context())
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d runs\n", processed)
				return nil
			}

			if err := mgr.Run(cmd.Context()); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Drain the queue once and exit")
	return cmd
}
