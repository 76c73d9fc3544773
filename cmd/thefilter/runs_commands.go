package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nycterent/thefilter/internal/lint"
	"github.com/nycterent/thefilter/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage pipeline runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsRetryCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))

	return runsCmd
}

// runView is the JSON projection of a run for operator tooling.
type runView struct {
	ID           int64          `json:"id"`
	Source       string         `json:"source"`
	Title        string         `json:"title,omitempty"`
	IssueNumber  int            `json:"issue_number,omitempty"`
	Status       runs.Status    `json:"status"`
	Outcome      runs.Outcome   `json:"outcome,omitempty"`
	EmailID      string         `json:"email_id,omitempty"`
	EmailURL     string         `json:"email_url,omitempty"`
	Attempts     []runs.Attempt `json:"attempts,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func newRunView(run *runs.Run) runView {
	view := runView{
		ID:           run.ID,
		Source:       run.Source,
		Title:        run.Title,
		IssueNumber:  run.IssueNumber,
		Status:       run.Status,
		EmailID:      run.EmailID,
		EmailURL:     run.EmailURL,
		Attempts:     run.Attempts,
		ErrorMessage: run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
		UpdatedAt:    run.UpdatedAt,
	}
	if outcome, ok := run.Outcome(); ok {
		view.Outcome = outcome
	}
	return view
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []runs.Status
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				status, ok := runs.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q (known: %s)", trimmed, knownStatuses())
				}
				statuses = append(statuses, status)
			}

			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}

			if asJSON {
				views := make([]runView, 0, len(items))
				for _, run := range items {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No runs found")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, run := range items {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					string(run.Status),
					runLabel(run),
					strconv.Itoa(len(run.Attempts)),
					run.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{name: "ID", numeric: true},
					{name: "STATUS"},
					{name: "TITLE", maxWidth: 48},
					{name: "ATTEMPTS", numeric: true},
					{name: "UPDATED"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by run status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run with its attempts and lint report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %d not found", id)
			}

			if asJSON {
				return writeJSON(cmd, newRunView(run))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %d\n", run.ID)
			fmt.Fprintf(out, "  Source:  %s\n", run.Source)
			if run.Title != "" {
				fmt.Fprintf(out, "  Title:   %s\n", run.Title)
			}
			fmt.Fprintf(out, "  Status:  %s\n", run.Status)
			if outcome, ok := run.Outcome(); ok {
				fmt.Fprintf(out, "  Outcome: %s\n", outcome)
			}
			if run.EmailID != "" {
				fmt.Fprintf(out, "  Email:   %s\n", run.EmailID)
			}
			if run.EmailURL != "" {
				fmt.Fprintf(out, "  Archive: %s\n", run.EmailURL)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:   %s\n", run.ErrorMessage)
			}
			fmt.Fprintf(out, "  Created: %s\n", run.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "  Updated: %s\n", run.UpdatedAt.Local().Format(time.RFC3339))

			if len(run.Attempts) > 0 {
				rows := make([][]string, 0, len(run.Attempts))
				for _, attempt := range run.Attempts {
					rows = append(rows, []string{
						strconv.Itoa(attempt.Number),
						attempt.StartedAt.Local().Format("2006-01-02 15:04:05"),
						string(attempt.Outcome),
						strconv.Itoa(attempt.Probes),
						attempt.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]tableColumn{
						{name: "#", numeric: true},
						{name: "STARTED"},
						{name: "OUTCOME"},
						{name: "PROBES", numeric: true},
						{name: "DETAIL", maxWidth: 60},
					},
					rows,
				))
			}

			if run.ReportJSON != "" {
				// Stored reports are re-checked against the schema before
				// rendering; a bad row is reported, not trusted.
				if err := lint.ValidateReportJSON(run.ReportJSON); err != nil {
					fmt.Fprintf(out, "stored report failed schema validation: %v\n", err)
					return nil
				}
				report, err := lint.Decode([]byte(run.ReportJSON))
				if err != nil {
					fmt.Fprintf(out, "stored report unreadable: %v\n", err)
					return nil
				}
				printReport(out, report)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newRunsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Open a fresh run for a terminal run's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			fresh, err := store.Reissue(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %d reissued as run %d (process it with 'thefilter process --once')\n", id, fresh.ID)
			return nil
		},
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete finished runs, keeping in-flight rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d finished runs\n", removed)
			return nil
		},
	}
}

// writeJSON emits v as indented JSON on the command's stdout. HTML escaping
// is off so archive URLs survive a shell pipeline unmangled.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid run id %q", arg)
	}
	return id, nil
}

func runLabel(run *runs.Run) string {
	if title := strings.TrimSpace(run.Title); title != "" {
		return title
	}
	return run.Source
}

func knownStatuses() string {
	all := runs.AllStatuses()
	names := make([]string, 0, len(all))
	for _, status := range all {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
