package main

import (
	"github.com/spf13/cobra"
)

// skipConfigLoad marks commands that must run before a config file exists,
// such as "config init".
const skipConfigLoad = "skipConfigLoad"

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "thefilter",
		Short:         "Quality gate and publisher for THE FILTER newsletter",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(
		newLintCommand(ctx),
		newPublishCommand(ctx),
		newProcessCommand(ctx),
		newRunsCommand(ctx),
		newConfigCommand(ctx),
		newDoctorCommand(ctx),
		newNotifyCommand(ctx),
		newVersionCommand(),
	)

	return rootCmd
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}
