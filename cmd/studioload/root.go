package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var todayFlag string

	ctx := newCommandContext(&configFlag, &todayFlag)

	rootCmd := &cobra.Command{
		Use:           "studioload",
		Short:         "Studio capacity allocation and forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
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
	rootCmd.PersistentFlags().StringVar(&todayFlag, "today", "", "Reference day (YYYY-MM-DD); defaults to the current UTC date")

	rootCmd.AddCommand(newAllocateCommand(ctx))
	rootCmd.AddCommand(newForecastCommand(ctx))
	rootCmd.AddCommand(newRisksCommand(ctx))
	rootCmd.AddCommand(newSnapshotCommand(ctx))
	rootCmd.AddCommand(newDaemonCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
