package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"studioload/internal/forecast"
	"studioload/internal/snapshot"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record and inspect daily allocation snapshots",
	}
	snapshotCmd.AddCommand(newSnapshotRecordCommand(ctx))
	snapshotCmd.AddCommand(newSnapshotListCommand(ctx))
	return snapshotCmd
}

func newSnapshotRecordCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record today's per-phase snapshot (once per day)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			in, _, err := ctx.fetchInput(cmd.Context())
			if err != nil {
				return err
			}

			store, err := snapshot.Open(cfg)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close()

			active := forecast.ActiveTasks(in, forecast.OptionsFromConfig(cfg))
			rows := snapshot.BuildRows(in.Today, active, snapshot.TargetsFromConfig(cfg), uuid.NewString())
			inserted, err := store.Record(cmd.Context(), rows)
			if err != nil {
				return fmt.Errorf("record snapshot: %w", err)
			}

			out := cmd.OutOrStdout()
			if inserted == 0 {
				fmt.Fprintf(out, "Snapshot for %s already recorded\n", formatDay(in.Today))
				return nil
			}
			fmt.Fprintf(out, "Recorded %d snapshot rows for %s\n", inserted, formatDay(in.Today))
			return nil
		},
	}
}

func newSnapshotListCommand(ctx *commandContext) *cobra.Command {
	var fromFlag, toFlag string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			from, err := parseBound("from", fromFlag)
			if err != nil {
				return err
			}
			to, err := parseBound("to", toFlag)
			if err != nil {
				return err
			}

			store, err := snapshot.Open(cfg)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close()

			rows, err := store.List(cmd.Context(), from, to)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if jsonOut {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No snapshots recorded")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{
					formatDay(r.Date),
					bandLabel(r.Category),
					formatPercent(r.ActualPercent),
					formatPercent(r.TargetPercent),
					fmt.Sprintf("%+.1f", r.Variance),
				})
			}
			fmt.Fprintln(out, renderTable("", []string{"Date", "Category", "Actual", "Target", "Variance"}, table,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// parseBound returns the zero time for an empty flag, which List treats as open.
func parseBound(name, raw string) (time.Time, error) {
	day, err := parseOptionalDay(name, strings.TrimSpace(raw))
	if err != nil || day == nil {
		return time.Time{}, err
	}
	return *day, nil
}
