package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector matches the prose units worth linting. Nested matches (a
// paragraph inside a list item) are folded into the outermost block.
const blockSelector = "p, li, blockquote, figcaption, pre"

const walkSelector = "h1, h2, h3, h4, h5, h6, " + blockSelector + ", a[href], img"

var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// Parse builds a Document from raw newsletter markup. Markdown sources are
// rendered to HTML first so both dialects share one extraction path. The
// only hard failure is input without a single heading; everything else is
// normalized and left for the rules to judge.
func Parse(source string, raw []byte) (*Document, error) {
	content := normalizeInput(raw)
	var fm FrontMatter
	if DetectFormat(source, content) == FormatMarkdown {
		var body string
		fm, body = splitFrontMatter(content)
		rendered, err := markdownToHTML(body)
		if err != nil {
			return nil, &MalformedDocumentError{Source: source, Reason: err.Error()}
		}
		content = rendered
	}
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &MalformedDocumentError{Source: source, Reason: err.Error()}
	}
	container := pickContainer(gq)
	container.Find("script, style, noscript, template").Remove()

	doc := &Document{Source: source, FrontMatter: fm}
	extract(doc, container)
	if len(doc.Sections) == 0 {
		return nil, &MalformedDocumentError{Source: source, Reason: "no headings found"}
	}
	return doc, nil
}

// pickContainer narrows extraction to the content root. Newsletters render
// inside main or a single article; chrome outside it is not ours to lint.
func pickContainer(gq *goquery.Document) *goquery.Selection {
	if main := gq.Find("main").First(); main.Length() > 0 {
		return main
	}
	if articles := gq.Find("article"); articles.Length() == 1 {
		return articles.First()
	}
	return gq.Find("body").First()
}

// extract walks every heading, block, anchor, and image in document order.
// A single pass keeps section attribution trivial: matched descendants
// always follow the heading that owns them.
func extract(doc *Document, container *goquery.Selection) {
	current := -1
	leadPending := false
	container.Find(walkSelector).Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		if level, ok := headingLevels[name]; ok {
			doc.Sections = append(doc.Sections, Section{
				Index:      len(doc.Sections),
				Level:      level,
				Heading:    collapseSpace(sel.Text()),
				HeadingRaw: preserveSpacing(sel.Text()),
			})
			current = len(doc.Sections) - 1
			leadPending = true
			return
		}
		switch name {
		case "a":
			href, _ := sel.Attr("href")
			doc.Links = append(doc.Links, Link{
				Index:   len(doc.Links),
				Section: current,
				Text:    collapseSpace(sel.Text()),
				Href:    strings.TrimSpace(href),
			})
			return
		case "img":
			doc.Images = append(doc.Images, Image{
				Index:   len(doc.Images),
				Section: current,
				Src:     strings.TrimSpace(sel.AttrOr("src", "")),
				Alt:     collapseSpace(sel.AttrOr("alt", "")),
			})
			return
		}
		if sel.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		block := makeBlock(sel, name, current)
		if block.Text == "" {
			return
		}
		if current < 0 {
			doc.Preamble = append(doc.Preamble, block)
		} else {
			s := &doc.Sections[current]
			s.Blocks = append(s.Blocks, block)
		}
		if name == "pre" {
			return
		}
		lead := leadPending && current >= 0
		leadPending = false
		for i, part := range splitSentences(block.Text) {
			doc.Sentences = append(doc.Sentences, Sentence{
				Index:      len(doc.Sentences),
				Section:    current,
				Text:       part.Text,
				Lead:       lead && i == 0,
				Terminated: part.Terminated,
				Quotes:     part.Quotes,
				Parens:     part.Parens,
			})
		}
	})
}

func makeBlock(sel *goquery.Selection, kind string, section int) Block {
	clone := sel.Clone()
	clone.Find("a").Remove()
	return Block{
		Section: section,
		Kind:    kind,
		Text:    collapseSpace(sel.Text()),
		Copy:    collapseSpace(clone.Text()),
	}
}

// preserveSpacing trims the text and folds whitespace runs that contain
// newlines or tabs into one space, while leaving runs of plain spaces
// intact. Source indentation disappears but a typed double space survives
// for the spacing checks.
func preserveSpacing(s string) string {
	var b strings.Builder
	run := make([]rune, 0, 4)
	flush := func() {
		if len(run) == 0 {
			return
		}
		pure := true
		for _, r := range run {
			if r != ' ' {
				pure = false
				break
			}
		}
		if pure {
			for range run {
				b.WriteByte(' ')
			}
		} else {
			b.WriteByte(' ')
		}
		run = run[:0]
	}
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			run = append(run, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " ")
}
