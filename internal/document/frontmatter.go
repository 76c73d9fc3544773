package document

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// FrontMatter carries the metadata keys the pipeline cares about. Unknown
// keys are ignored.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Slug        string `yaml:"slug"`
}

const frontMatterFence = "---"

// splitFrontMatter strips a leading YAML block delimited by --- lines and
// decodes it. A fenced block that does not decode as YAML is assumed to be
// content (for example two thematic breaks) and the source is returned
// unchanged.
func splitFrontMatter(src string) (FrontMatter, string) {
	var fm FrontMatter
	rest, ok := strings.CutPrefix(src, frontMatterFence+"\n")
	if !ok {
		rest, ok = strings.CutPrefix(src, frontMatterFence+"\r\n")
		if !ok {
			return fm, src
		}
	}
	idx := strings.Index(rest, "\n"+frontMatterFence)
	if idx < 0 {
		return fm, src
	}
	block := rest[:idx]
	body := rest[idx+len("\n"+frontMatterFence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return FrontMatter{}, src
	}
	return fm, body
}
