package lint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nycterent/thefilter/internal/document"
)

var shortTailPattern = regexp.MustCompile(`\b\w{1,2}$`)

// checkTruncatedSentences flags sentences that were cut off mid-thought and
// sentences with unpaired quotes or brackets. The lead sentence after a
// heading is what readers see in the section preview, so defects there are
// blocking; everywhere else they are advisory.
func checkTruncatedSentences(in ruleInput) []Finding {
	var findings []Finding
	for _, sentence := range in.doc.Sentences {
		severity := SeverityAdvisory
		if sentence.Lead {
			severity = SeverityBlocking
		}
		if truncated(sentence, in.cfg.MinSentenceLength) {
			findings = append(findings, Finding{
				Rule:     RuleTruncatedSentence,
				Severity: severity,
				Message:  fmt.Sprintf("sentence may be truncated: %q", prefix(sentence.Text, 80)),
				Location: sentenceLocation(sentence.Index),
			})
		}
		if sentence.Quotes+sentence.Parens > 0 {
			findings = append(findings, Finding{
				Rule:     RuleTruncatedSentence,
				Severity: severity,
				Message:  fmt.Sprintf("unbalanced quotes or brackets: %q", prefix(sentence.Text, 80)),
				Location: sentenceLocation(sentence.Index),
			})
		}
	}
	return findings
}

// truncated applies qualifiers that separate real truncation from labels
// and bylines: a long unterminated run, a trailing colon, or a suspiciously
// short final word all indicate a cut.
func truncated(sentence document.Sentence, minLength int) bool {
	if sentence.Terminated {
		return false
	}
	if utf8.RuneCountInString(sentence.Text) >= minLength {
		return true
	}
	if strings.HasSuffix(sentence.Text, ":") {
		return true
	}
	return shortTailPattern.MatchString(sentence.Text)
}
