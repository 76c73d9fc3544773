package document

import (
	"fmt"

	"github.com/nycterent/thefilter/internal/services"
)

// Document is the immutable parse result for one rendered newsletter.
// Sections appear in reading order; the flat Links, Images, and Sentences
// slices also preserve document order so findings diff deterministically
// across runs.
type Document struct {
	// Source is the path or URL the document was loaded from.
	Source string
	// FrontMatter holds metadata stripped from a leading YAML block, if any.
	FrontMatter FrontMatter
	// Preamble holds body blocks that appear before the first heading.
	Preamble []Block
	Sections []Section
	Links    []Link
	Images   []Image
	// Sentences are extracted from every prose block, preamble included.
	Sentences []Sentence
}

// Section is one heading plus the body blocks that follow it, up to the next
// heading of any level.
type Section struct {
	Index   int
	Level   int
	Heading string
	// HeadingRaw keeps interior spacing intact for the spacing checks.
	HeadingRaw string
	Blocks     []Block
}

// Block is one prose unit (paragraph, list item, quote, or caption).
type Block struct {
	// Section is the index of the owning section, or -1 for preamble blocks.
	Section int
	Kind    string
	// Text is the visible text with whitespace collapsed.
	Text string
	// Copy is Text with anchor text removed, for checks that must not
	// confuse linked URLs with URLs pasted into running copy.
	Copy string
}

// Link is one anchor in document order.
type Link struct {
	Index   int
	Section int
	Text    string
	Href    string
}

// Image is one embedded image in document order.
type Image struct {
	Index   int
	Section int
	Src     string
	Alt     string
}

// Sentence is one tokenized sentence with the punctuation state the
// truncation rule inspects.
type Sentence struct {
	Index   int
	Section int
	Text    string
	// Lead marks the first sentence of the first block after a heading.
	Lead bool
	// Terminated is false when the sentence lacks closing punctuation.
	Terminated bool
	// Quotes is the number of unpaired quotation marks.
	Quotes int
	// Parens is the number of unpaired parentheses and brackets.
	Parens int
}

// Headings returns the ordered heading sequence, one entry per section.
func (d *Document) Headings() []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Heading
	}
	return out
}

// Blocks returns every prose block in reading order, preamble first.
func (d *Document) Blocks() []Block {
	var out []Block
	out = append(out, d.Preamble...)
	for _, s := range d.Sections {
		out = append(out, s.Blocks...)
	}
	return out
}

// MalformedDocumentError reports input that cannot be interpreted as a
// newsletter at all. Anything less severe becomes a lint finding instead.
type MalformedDocumentError struct {
	Source string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("malformed document: %s", e.Reason)
	}
	return fmt.Sprintf("malformed document %s: %s", e.Source, e.Reason)
}

// Unwrap ties the error into the parse classification so callers can use
// errors.Is without inspecting the concrete type.
func (e *MalformedDocumentError) Unwrap() error {
	return services.ErrParse
}
