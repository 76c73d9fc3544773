package document

import "strings"

type sentencePart struct {
	Text       string
	Terminated bool
	Quotes     int
	Parens     int
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

// splitSentences tokenizes collapsed block text on terminal punctuation.
// Closing quotes and brackets directly after a terminator stay with the
// sentence they close. Only the trailing fragment can be unterminated, which
// is exactly the shape a mid-sentence truncation produces.
func splitSentences(text string) []sentencePart {
	var parts []sentencePart
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		if !isTerminator(runes[i]) {
			i++
			continue
		}
		for i+1 < len(runes) && (isTerminator(runes[i+1]) || isCloser(runes[i+1])) {
			i++
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			i++
			continue
		}
		if part, ok := makePart(string(runes[start:i+1]), true); ok {
			parts = append(parts, part)
		}
		i++
		for i < len(runes) && runes[i] == ' ' {
			i++
		}
		start = i
	}
	if start < len(runes) {
		if part, ok := makePart(string(runes[start:]), false); ok {
			parts = append(parts, part)
		}
	}
	return parts
}

func makePart(text string, terminated bool) (sentencePart, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return sentencePart{}, false
	}
	return sentencePart{
		Text:       text,
		Terminated: terminated,
		Quotes:     quoteImbalance(text),
		Parens:     parenImbalance(text),
	}, true
}

// quoteImbalance counts unpaired quotation marks. Straight double quotes
// pair by parity; curly quotes pair open against close. Single quotes are
// ignored because apostrophes make them indistinguishable from quoting.
func quoteImbalance(text string) int {
	var straight, open, close int
	for _, r := range text {
		switch r {
		case '"':
			straight++
		case '“':
			open++
		case '”':
			close++
		}
	}
	return straight%2 + abs(open-close)
}

func parenImbalance(text string) int {
	var paren, bracket int
	for _, r := range text {
		switch r {
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			bracket++
		case ']':
			bracket--
		}
	}
	return abs(paren) + abs(bracket)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
