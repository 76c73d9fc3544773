package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nycterent/thefilter/internal/document"
	"github.com/nycterent/thefilter/internal/lint"
	"github.com/nycterent/thefilter/internal/logging"
)

func newLintCommand(ctx *commandContext) *cobra.Command {
	var goldenFlag string
	var jsonPath string

	cmd := &cobra.Command{
		Use:   "lint <source>...",
		Short: "Lint newsletter sources against the rule catalogue",
		Long: `Lint fetches each source (file path or URL), runs the full rule
catalogue, and prints a per-rule summary. Exit status 0 means every source
passed, 1 means at least one blocking finding, 2 means a source could not
be read or parsed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			loader := document.NewLoader(
				document.WithFetchTimeout(time.Duration(cfg.Lint.FetchTimeout) * time.Second),
			)
			engine := lint.NewEngine(cfg.Lint, logger)

			golden, err := loadGolden(cmd.Context(), loader, logger, goldenFlag, cfg.Lint.GoldenSource)
			if err != nil {
				return &exitError{code: 2, err: err}
			}

			out := cmd.OutOrStdout()
			reports := make([]*lint.Report, 0, len(args))
			failed := 0
			for _, source := range args {
				doc, err := loader.Load(cmd.Context(), source)
				if err != nil {
					return &exitError{code: 2, err: err}
				}
				findings, skipped := engine.Evaluate(cmd.Context(), doc, golden)
				report := lint.BuildReport(source, findings, skipped)
				reports = append(reports, report)
				printReport(out, report)
				if !report.Passed {
					failed++
				}
			}

			if jsonPath != "" {
				if err := writeReportsJSON(jsonPath, reports); err != nil {
					return &exitError{code: 2, err: err}
				}
			}

			if failed > 0 {
				return &exitError{code: 1, err: fmt.Errorf("%d of %d sources failed", failed, len(reports))}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goldenFlag, "golden", "", "Golden reference source for the section parity rule")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Write the machine-readable report to this path")
	return cmd
}

// loadGolden resolves the parity reference. An explicitly flagged source
// that cannot be loaded is a hard error; a configured one degrades to a
// recorded skip, same as the pipeline.
func loadGolden(ctx context.Context, loader *document.Loader, logger *slog.Logger, flagValue, configured string) (*document.Document, error) {
	if source := strings.TrimSpace(flagValue); source != "" {
		doc, err := loader.Load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("load golden reference: %w", err)
		}
		return doc, nil
	}
	source := strings.TrimSpace(configured)
	if source == "" {
		return nil, nil
	}
	doc, err := loader.Load(ctx, source)
	if err != nil {
		logger.Warn("golden reference unavailable",
			logging.String("golden_source", source),
			logging.Error(err),
		)
		return nil, nil
	}
	return doc, nil
}

func printReport(out io.Writer, report *lint.Report) {
	fmt.Fprintf(out, "Source: %s\n", report.Source)

	rows := make([][]string, 0, len(report.Summaries()))
	for _, row := range report.Summaries() {
		count := strconv.Itoa(row.Count)
		blocking := strconv.Itoa(row.Blocking)
		notes := ""
		if row.Skipped {
			count, blocking = "-", "-"
			notes = "skipped: " + row.Reason
		}
		rows = append(rows, []string{row.Rule, count, blocking, notes})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{
			{name: "RULE"},
			{name: "FINDINGS", numeric: true},
			{name: "BLOCKING", numeric: true},
			{name: "NOTES", maxWidth: 60},
		},
		rows,
	))

	for _, finding := range report.Findings {
		fmt.Fprintf(out, "  [%s] %s (%s): %s\n", finding.Severity, finding.Rule, finding.Location, finding.Message)
	}

	if report.Passed {
		fmt.Fprintf(out, "PASS %s\n\n", report.Source)
	} else {
		fmt.Fprintf(out, "FAIL %s\n\n", report.Source)
	}
}

// writeReportsJSON writes one schema-validated report object, or an array
// when several sources were linted together.
func writeReportsJSON(path string, reports []*lint.Report) error {
	var payload []byte
	if len(reports) == 1 {
		data, err := reports[0].Encode()
		if err != nil {
			return err
		}
		payload = data
	} else {
		entries := make([]json.RawMessage, 0, len(reports))
		for _, report := range reports {
			data, err := report.Encode()
			if err != nil {
				return err
			}
			entries = append(entries, json.RawMessage(data))
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encode reports: %w", err)
		}
		payload = data
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}
