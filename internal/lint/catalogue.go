package lint

import (
	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/document"
)

// Rule ids are stable identifiers: they appear in reports, notifications,
// and operator tooling, so they never change even if detection logic does.
const (
	RulePromptLeakage     = "prompt_leakage"
	RuleGuardrailRefusals = "guardrail_refusals"
	RuleRawURLsInCopy     = "raw_urls_in_copy"
	RuleNonCanonicalLinks = "non_canonical_links"
	RuleGenericLinkText   = "generic_or_placeholder_link_text"
	RuleHeadlineStyle     = "headline_style_inconsistencies"
	RuleSeparatorsSpacing = "separators_and_spacing"
	RuleImageAltCaptions  = "image_alt_captions"
	RuleTruncatedSentence = "truncated_or_unbalanced_sentences"
	RuleSectionParity     = "section_parity_with_golden"
)

type ruleInput struct {
	doc    *document.Document
	golden *document.Document
	cfg    config.Lint
}

type rule struct {
	id          string
	needsGolden bool
	run         func(in ruleInput) []Finding
}

// catalogue lists every rule in its fixed evaluation order. Report grouping
// and the summary table follow this order regardless of how the engine
// schedules execution.
var catalogue = []rule{
	{id: RulePromptLeakage, run: checkPromptLeakage},
	{id: RuleGuardrailRefusals, run: checkGuardrailRefusals},
	{id: RuleRawURLsInCopy, run: checkRawURLs},
	{id: RuleNonCanonicalLinks, run: checkNonCanonicalLinks},
	{id: RuleGenericLinkText, run: checkGenericLinkText},
	{id: RuleHeadlineStyle, run: checkHeadlineStyle},
	{id: RuleSeparatorsSpacing, run: checkSeparatorsAndSpacing},
	{id: RuleImageAltCaptions, run: checkImageAltCaptions},
	{id: RuleTruncatedSentence, run: checkTruncatedSentences},
	{id: RuleSectionParity, needsGolden: true, run: checkSectionParity},
}

// RuleIDs returns the catalogue order, for summary rendering.
func RuleIDs() []string {
	out := make([]string, len(catalogue))
	for i, r := range catalogue {
		out[i] = r.id
	}
	return out
}
