package lint

import (
	"encoding/json"
	"fmt"
)

// Report is the aggregated outcome of one lint invocation. Findings are
// grouped by catalogue order, document order within each rule. Reports are
// never mutated after construction; amendments require a new lint run.
type Report struct {
	Source   string    `json:"source"`
	Passed   bool      `json:"passed"`
	Findings []Finding `json:"findings"`
	Skipped  []Skip    `json:"skipped,omitempty"`
}

// BuildReport computes the verdict from the findings. Passed is true iff no
// blocking finding exists; advisory findings never fail a report.
func BuildReport(source string, findings []Finding, skipped []Skip) *Report {
	if findings == nil {
		findings = []Finding{}
	}
	passed := true
	for _, f := range findings {
		if f.Severity == SeverityBlocking {
			passed = false
			break
		}
	}
	return &Report{
		Source:   source,
		Passed:   passed,
		Findings: findings,
		Skipped:  skipped,
	}
}

// Encode serializes the report and verifies the result against the embedded
// schema, so a malformed report can never be written for downstream tooling.
func (r *Report) Encode() ([]byte, error) {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := ValidateReportJSON(string(payload)); err != nil {
		return nil, fmt.Errorf("report failed schema validation: %w", err)
	}
	return payload, nil
}

// Decode parses a serialized report.
func Decode(payload []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// RuleSummary is one row of the per-rule summary table.
type RuleSummary struct {
	Rule     string
	Count    int
	Blocking int
	Skipped  bool
	Reason   string
}

// Summaries returns one row per catalogue rule in catalogue order,
// including rules with zero findings.
func (r *Report) Summaries() []RuleSummary {
	rows := make([]RuleSummary, 0, len(catalogue))
	for _, id := range RuleIDs() {
		row := RuleSummary{Rule: id}
		for _, f := range r.Findings {
			if f.Rule != id {
				continue
			}
			row.Count++
			if f.Severity == SeverityBlocking {
				row.Blocking++
			}
		}
		for _, s := range r.Skipped {
			if s.Rule == id {
				row.Skipped = true
				row.Reason = s.Reason
			}
		}
		rows = append(rows, row)
	}
	return rows
}
