package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/preflight"
)

// newDoctorCommand builds the preflight diagnostics command. It loads the
// config itself so a broken file is reported as a check line instead of
// aborting before any output.
func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:         "doctor",
		Short:       "Check configuration, directories, and the run database",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(os.Stdout)
			failed := false

			fmt.Fprintln(out, "thefilter doctor")

			var path string
			if ctx.configFlag != nil {
				path = *ctx.configFlag
			}
			cfg, resolvedPath, exists, err := config.Load(path)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Config", statusError, err.Error(), colorize))
				return &exitError{code: 1, err: fmt.Errorf("configuration invalid")}
			}
			if exists {
				fmt.Fprintln(out, renderStatusLine("Config", statusOK, resolvedPath, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config", statusWarn, fmt.Sprintf("%s missing, defaults in effect ('thefilter config init' writes a sample)", resolvedPath), colorize))
			}

			if err := cfg.EnsureDirectories(); err != nil {
				fmt.Fprintln(out, renderStatusLine("Directories", statusError, err.Error(), colorize))
				failed = true
			}

			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed = true
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if err := cfg.RequireAPIKey(); err != nil {
				fmt.Fprintln(out, renderStatusLine("Buttondown key", statusWarn, "not set (lint works, publish will refuse to start)", colorize))
			} else if online {
				result := preflight.CheckButtondown(cmd.Context(), cfg)
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed = true
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Buttondown key", statusOK, "set (pass --online to verify it)", colorize))
			}

			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, "ntfy topic not set, terminal outcomes stay local", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Notifications", statusOK, "ntfy topic configured", colorize))
			}

			if failed {
				return &exitError{code: 1, err: fmt.Errorf("doctor found problems")}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also probe the Buttondown API")
	return cmd
}
