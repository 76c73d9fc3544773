package document

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeInput repairs ill-formed UTF-8 and applies NFC so that rule
// matching sees one canonical representation of visually identical text.
func normalizeInput(raw []byte) string {
	t := transform.Chain(runes.ReplaceIllFormed(), norm.NFC)
	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// collapseSpace trims and folds runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
