package lint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// promptLeakagePatterns catch role tags and instruction residue that an
// upstream generation step can leak into the rendered issue.
var promptLeakagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\s)(?:user|assistant|system):`),
	regexp.MustCompile(`(?i)hint to ai`),
	regexp.MustCompile(`(?i)system prompt`),
	regexp.MustCompile(`(?i)as an ai language model`),
	regexp.MustCompile(`(?i)do not (?:include|output|mention)`),
}

func checkPromptLeakage(in ruleInput) []Finding {
	var findings []Finding
	for _, block := range in.doc.Blocks() {
		for _, pattern := range promptLeakagePatterns {
			for _, loc := range pattern.FindAllStringIndex(block.Text, -1) {
				findings = append(findings, Finding{
					Rule:     RulePromptLeakage,
					Severity: SeverityBlocking,
					Message:  fmt.Sprintf("prompt residue near %q", snippet(block.Text, loc[0], loc[1])),
					Location: sectionLocation(block.Section),
				})
			}
		}
	}
	return findings
}

// refusalPatterns match guardrail boilerplate. Apostrophes appear straight
// or curly depending on the renderer, so both forms are accepted.
var refusalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)i['\x{2019}]m sorry, but i can['\x{2019}]t`),
	regexp.MustCompile(`(?i)i cannot comply`),
	regexp.MustCompile(`(?i)i cannot fulfill`),
	regexp.MustCompile(`(?i)i can['\x{2019}]t provide[^.]*?(?:illegal|harmful|dangerous|weapons|self-harm|malware|adult)`),
	regexp.MustCompile(`(?i)i am just an ai model`),
	regexp.MustCompile(`(?i)not within my programming`),
	regexp.MustCompile(`(?i)particularly when it involves minors`),
}

func checkGuardrailRefusals(in ruleInput) []Finding {
	var findings []Finding
	for _, block := range in.doc.Blocks() {
		for _, pattern := range refusalPatterns {
			for _, loc := range pattern.FindAllStringIndex(block.Text, -1) {
				findings = append(findings, Finding{
					Rule:     RuleGuardrailRefusals,
					Severity: SeverityBlocking,
					Message:  fmt.Sprintf("refusal boilerplate near %q", snippet(block.Text, loc[0], loc[1])),
					Location: sectionLocation(block.Section),
				})
			}
		}
	}
	return findings
}

// snippet returns the match plus up to 20 bytes of context on each side,
// widened to rune boundaries.
func snippet(text string, start, end int) string {
	lo := start - 20
	if lo < 0 {
		lo = 0
	}
	hi := end + 20
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}

// prefix returns at most n runes of the text, for messages that quote long
// sentences.
func prefix(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
