package lint

import "fmt"

// Severity classifies how a finding affects the overall verdict.
type Severity string

const (
	// SeverityBlocking findings fail the report.
	SeverityBlocking Severity = "blocking"
	// SeverityAdvisory findings are surfaced without failing the report.
	SeverityAdvisory Severity = "advisory"
)

// Finding is one rule violation. The location string carries the index into
// the document model (section, link, image, or sentence) needed to re-locate
// the offending content.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Location string   `json:"location"`
}

// Skip records a rule that could not run because its input was missing. A
// skipped rule is reported explicitly, never silently omitted and never
// counted as a pass.
type Skip struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

func sectionLocation(index int) string {
	if index < 0 {
		return "preamble"
	}
	return fmt.Sprintf("section %d", index)
}

func linkLocation(index int) string {
	return fmt.Sprintf("link %d", index)
}

func imageLocation(index int) string {
	return fmt.Sprintf("image %d", index)
}

func sentenceLocation(index int) string {
	return fmt.Sprintf("sentence %d", index)
}

func goldenLocation(index int) string {
	return fmt.Sprintf("golden section %d", index)
}
