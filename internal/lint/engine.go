package lint

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/document"
	"github.com/nycterent/thefilter/internal/logging"
)

// Engine evaluates the rule catalogue against a document. Rules run in
// parallel; each writes into its own catalogue slot and the merge re-sorts
// by (catalogue order, document order), so the output is identical to a
// sequential run.
type Engine struct {
	cfg    config.Lint
	logger *slog.Logger
}

// NewEngine constructs an Engine. A nil logger disables engine logging.
func NewEngine(cfg config.Lint, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Evaluate runs every rule and returns the merged findings plus the rules
// that were skipped for missing input. A rule that panics is converted
// into a single advisory diagnostic finding so one bad checker cannot mask
// the rest of the report.
func (e *Engine) Evaluate(ctx context.Context, doc, golden *document.Document) ([]Finding, []Skip) {
	in := ruleInput{doc: doc, golden: golden, cfg: e.cfg}

	slots := make([][]Finding, len(catalogue))
	skips := make([]*Skip, len(catalogue))

	g, _ := errgroup.WithContext(ctx)
	for i, r := range catalogue {
		i, r := i, r // pre-go1.22 loopvar semantics: keep per-iteration copies
		g.Go(func() error {
			if r.needsGolden && golden == nil {
				skips[i] = &Skip{Rule: r.id, Reason: "no golden reference supplied"}
				return nil
			}
			slots[i] = runRule(r, in)
			return nil
		})
	}
	// Rules return no errors; panics are absorbed by runRule.
	_ = g.Wait()

	var findings []Finding
	var skipped []Skip
	for i := range catalogue {
		if skips[i] != nil {
			skipped = append(skipped, *skips[i])
			continue
		}
		findings = append(findings, slots[i]...)
	}
	e.logger.Debug("rule evaluation complete",
		logging.String(logging.FieldSource, doc.Source),
		logging.Int("findings", len(findings)),
		logging.Int("skipped", len(skipped)))
	return findings, skipped
}

func runRule(r rule, in ruleInput) (findings []Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = []Finding{{
				Rule:     r.id,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("rule failed internally: %v", rec),
				Location: "document",
			}}
		}
	}()
	return r.run(in)
}
