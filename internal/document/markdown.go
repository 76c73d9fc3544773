package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Format identifies the markup dialect of a raw source.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// markdownConverter renders Markdown the way the publishing platform does:
// GFM tables and autolinks, footnotes, and raw inline HTML passed through so
// embedded img tags stay visible to the linter.
var markdownConverter = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
		html.WithUnsafe(),
	),
)

// DetectFormat sniffs the markup dialect from the source name and content.
// Extensions win; otherwise document-level HTML tags indicate HTML and
// anything else is treated as Markdown, which matches how the newsletter
// templates are authored.
func DetectFormat(source, content string) Format {
	lower := strings.ToLower(source)
	switch {
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"), strings.HasSuffix(lower, ".mkd"):
		return FormatMarkdown
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return FormatHTML
	}
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") || strings.HasPrefix(trimmed, "<body") {
		return FormatHTML
	}
	if strings.Contains(trimmed, "</p>") || strings.Contains(trimmed, "</div>") || strings.Contains(trimmed, "</h1>") || strings.Contains(trimmed, "</h2>") {
		return FormatHTML
	}
	return FormatMarkdown
}

func markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
