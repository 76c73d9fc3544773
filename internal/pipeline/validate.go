package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/document"
	"github.com/nycterent/thefilter/internal/lint"
	"github.com/nycterent/thefilter/internal/logging"
	"github.com/nycterent/thefilter/internal/runs"
	"github.com/nycterent/thefilter/internal/services"
)

// validateStage lints the run's document and stores the report on the run.
// A report with blocking findings rejects the run.
type validateStage struct {
	cfg    *config.Config
	loader *document.Loader
	engine *lint.Engine
	logger *slog.Logger
}

func newValidateStage(cfg *config.Config, loader *document.Loader, logger *slog.Logger) *validateStage {
	return &validateStage{
		cfg:    cfg,
		loader: loader,
		engine: lint.NewEngine(cfg.Lint, logger),
		logger: logger,
	}
}

func (s *validateStage) Prepare(ctx context.Context, run *runs.Run) error {
	return nil
}

func (s *validateStage) Execute(ctx context.Context, run *runs.Run) error {
	doc, err := s.loader.Load(ctx, run.Source)
	if err != nil {
		return err
	}

	var golden *document.Document
	if goldenSource := strings.TrimSpace(s.cfg.Lint.GoldenSource); goldenSource != "" {
		golden, err = s.loader.Load(ctx, goldenSource)
		if err != nil {
			// The golden reference only feeds the parity rule, which
			// records an explicit skip when the reference is absent.
			logging.WithContext(ctx, s.logger).Warn("golden reference unavailable",
				logging.String("golden_source", goldenSource),
				logging.Error(err),
			)
			golden = nil
		}
	}

	findings, skipped := s.engine.Evaluate(ctx, doc, golden)
	report := lint.BuildReport(run.Source, findings, skipped)
	encoded, err := report.Encode()
	if err != nil {
		return services.Wrap(services.ErrParse, "validate", "encode report", "", err)
	}
	run.ReportJSON = string(encoded)

	if !report.Passed {
		return services.Wrap(services.ErrValidation, "validate", "lint", blockingSummary(report), nil)
	}
	return nil
}

// blockingSummary names the rules that failed the report, in catalogue
// order, for the run's error message.
func blockingSummary(report *lint.Report) string {
	seen := make(map[string]struct{})
	var rules []string
	for _, finding := range report.Findings {
		if finding.Severity != lint.SeverityBlocking {
			continue
		}
		if _, ok := seen[finding.Rule]; ok {
			continue
		}
		seen[finding.Rule] = struct{}{}
		rules = append(rules, finding.Rule)
	}
	return fmt.Sprintf("blocking findings: %s", strings.Join(rules, ", "))
}
