package lint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var profanityPattern = regexp.MustCompile(`(?i)\b(?:fuck|shit|bitch|damn|ass)\b`)

func checkHeadlineStyle(in ruleInput) []Finding {
	var findings []Finding
	for _, section := range in.doc.Sections {
		heading := section.Heading
		if heading == "" {
			findings = append(findings, Finding{
				Rule:     RuleHeadlineStyle,
				Severity: SeverityAdvisory,
				Message:  "empty heading",
				Location: sectionLocation(section.Index),
			})
			continue
		}
		if allLettersLower(heading) {
			findings = append(findings, Finding{
				Rule:     RuleHeadlineStyle,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("heading is all lowercase: %q", heading),
				Location: sectionLocation(section.Index),
			})
			continue
		}
		words := len(strings.Fields(heading))
		compact := utf8.RuneCountInString(strings.ReplaceAll(heading, " ", ""))
		if words <= in.cfg.ShortHeadingWords && compact < in.cfg.MinHeadingLength {
			findings = append(findings, Finding{
				Rule:     RuleHeadlineStyle,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("heading too short: %q", heading),
				Location: sectionLocation(section.Index),
			})
		}
		if profanityPattern.MatchString(heading) {
			findings = append(findings, Finding{
				Rule:     RuleHeadlineStyle,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("profanity in heading: %q", heading),
				Location: sectionLocation(section.Index),
			})
		}
	}
	return findings
}

// allLettersLower reports whether the text contains letters and every one
// of them is lowercase. All-caps headings are a house-style choice and are
// deliberately not flagged.
func allLettersLower(text string) bool {
	sawLetter := false
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		sawLetter = true
		if !unicode.IsLower(r) {
			return false
		}
	}
	return sawLetter
}

// separatorRunPattern matches runs of three or more repeated separator
// characters, optionally spaced, left behind by template or markdown
// artifacts.
var separatorRunPattern = regexp.MustCompile(`(?:\*\s*){3,}|(?:-\s*){3,}|(?:_\s*){3,}|(?:=\s*){3,}|(?:~\s*){3,}|(?:\x{2022}\s*){3,}`)

func checkSeparatorsAndSpacing(in ruleInput) []Finding {
	var findings []Finding
	for _, block := range in.doc.Blocks() {
		for _, match := range separatorRunPattern.FindAllString(block.Text, -1) {
			findings = append(findings, Finding{
				Rule:     RuleSeparatorsSpacing,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("separator run %q", strings.TrimSpace(match)),
				Location: sectionLocation(block.Section),
			})
		}
	}
	for _, section := range in.doc.Sections {
		if strings.Contains(section.HeadingRaw, "  ") {
			findings = append(findings, Finding{
				Rule:     RuleSeparatorsSpacing,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("double space in heading: %q", section.HeadingRaw),
				Location: sectionLocation(section.Index),
			})
		}
	}
	return findings
}

func checkImageAltCaptions(in ruleInput) []Finding {
	generic := make(map[string]struct{}, len(in.cfg.GenericAltText))
	for _, entry := range in.cfg.GenericAltText {
		generic[entry] = struct{}{}
	}
	var findings []Finding
	for _, image := range in.doc.Images {
		alt := strings.TrimSpace(image.Alt)
		lower := strings.ToLower(alt)
		var message string
		switch {
		case alt == "":
			message = fmt.Sprintf("image %q missing alt text", imageRef(image.Src))
		case utf8.RuneCountInString(alt) < in.cfg.MinAltLength:
			message = fmt.Sprintf("alt text too short: %q", alt)
		default:
			if _, ok := generic[lower]; ok || strings.HasPrefix(lower, "image: professional illustration depicting") {
				message = fmt.Sprintf("generic alt text: %q", alt)
			}
		}
		if message == "" {
			continue
		}
		findings = append(findings, Finding{
			Rule:     RuleImageAltCaptions,
			Severity: SeverityAdvisory,
			Message:  message,
			Location: imageLocation(image.Index),
		})
	}
	// Repeated sources usually mean a template filled every slot with the
	// same fallback art.
	seen := make(map[string]int, len(in.doc.Images))
	for _, image := range in.doc.Images {
		src := strings.TrimSpace(image.Src)
		if src == "" {
			continue
		}
		seen[src]++
		if seen[src] == 2 {
			findings = append(findings, Finding{
				Rule:     RuleImageAltCaptions,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("duplicate image source %q", src),
				Location: imageLocation(image.Index),
			})
		}
	}
	return findings
}

func imageRef(src string) string {
	if strings.TrimSpace(src) == "" {
		return "<missing src>"
	}
	return src
}
