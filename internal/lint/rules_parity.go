package lint

import (
	"fmt"
	"strings"

	"github.com/nycterent/thefilter/internal/document"
)

// parityEntry is one heading at a level the parity comparison cares about.
type parityEntry struct {
	section int
	level   int
	text    string
}

// checkSectionParity diffs the document's heading sequence against the
// golden reference as an ordered multiset: extra sections, missing
// sections, and level mismatches are each reported. Comparing a document
// against itself yields no findings.
func checkSectionParity(in ruleInput) []Finding {
	if in.golden == nil {
		return nil
	}
	docEntries := parityEntries(in.doc, in.cfg.ParityLevels)
	goldenEntries := parityEntries(in.golden, in.cfg.ParityLevels)

	var findings []Finding

	// Extra: document headings with no unconsumed counterpart in golden.
	goldenRemaining := parityCounts(goldenEntries)
	for _, entry := range docEntries {
		if goldenRemaining[entry.text] > 0 {
			goldenRemaining[entry.text]--
			continue
		}
		findings = append(findings, Finding{
			Rule:     RuleSectionParity,
			Severity: SeverityAdvisory,
			Message:  fmt.Sprintf("section %q not present in golden", entry.text),
			Location: sectionLocation(entry.section),
		})
	}

	// Missing: golden headings with no unconsumed counterpart in the document.
	docRemaining := parityCounts(docEntries)
	for _, entry := range goldenEntries {
		if docRemaining[entry.text] > 0 {
			docRemaining[entry.text]--
			continue
		}
		findings = append(findings, Finding{
			Rule:     RuleSectionParity,
			Severity: SeverityAdvisory,
			Message:  fmt.Sprintf("section %q missing (present in golden)", entry.text),
			Location: goldenLocation(entry.section),
		})
	}

	// Level mismatches: pair the k-th occurrence of each heading text on
	// both sides and compare levels.
	goldenLevels := parityLevelsByText(goldenEntries)
	occurrence := make(map[string]int, len(docEntries))
	for _, entry := range docEntries {
		k := occurrence[entry.text]
		occurrence[entry.text]++
		levels := goldenLevels[entry.text]
		if k >= len(levels) {
			continue
		}
		if levels[k] != entry.level {
			findings = append(findings, Finding{
				Rule:     RuleSectionParity,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("section %q is h%d, golden has h%d", entry.text, entry.level, levels[k]),
				Location: sectionLocation(entry.section),
			})
		}
	}

	return findings
}

func parityEntries(doc *document.Document, levels []int) []parityEntry {
	included := make(map[int]struct{}, len(levels))
	for _, level := range levels {
		included[level] = struct{}{}
	}
	var entries []parityEntry
	for _, section := range doc.Sections {
		if _, ok := included[section.Level]; !ok {
			continue
		}
		entries = append(entries, parityEntry{
			section: section.Index,
			level:   section.Level,
			text:    strings.ToLower(section.Heading),
		})
	}
	return entries
}

func parityCounts(entries []parityEntry) map[string]int {
	counts := make(map[string]int, len(entries))
	for _, entry := range entries {
		counts[entry.text]++
	}
	return counts
}

func parityLevelsByText(entries []parityEntry) map[string][]int {
	byText := make(map[string][]int, len(entries))
	for _, entry := range entries {
		byText[entry.text] = append(byText[entry.text], entry.level)
	}
	return byText
}
