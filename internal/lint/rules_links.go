package lint

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	schemeURLPattern  = regexp.MustCompile(`(?i)https?://\S+`)
	bareDomainPattern = regexp.MustCompile(`(?i)\b[a-z0-9.-]+\.[a-z]{2,}(?:/\S*)?`)
	placeholderURLRef = regexp.MustCompile(`^url\d+$`)
)

// checkRawURLs flags anchors whose visible text is itself a URL, and URLs
// that appear in running copy outside any anchor. Block.Copy already has
// anchor text removed, so linked URLs never double-report.
func checkRawURLs(in ruleInput) []Finding {
	var findings []Finding
	for _, block := range in.doc.Blocks() {
		schemeMatches := schemeURLPattern.FindAllString(block.Copy, -1)
		for _, match := range schemeMatches {
			findings = append(findings, Finding{
				Rule:     RuleRawURLsInCopy,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("raw url in copy: %q", match),
				Location: sectionLocation(block.Section),
			})
		}
		for _, match := range bareDomainPattern.FindAllString(block.Copy, -1) {
			if hasURLPrefix(match) || strings.HasPrefix(strings.ToLower(match), "www.") {
				continue
			}
			if containedInAny(match, schemeMatches) {
				continue
			}
			findings = append(findings, Finding{
				Rule:     RuleRawURLsInCopy,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("bare domain in copy: %q", match),
				Location: sectionLocation(block.Section),
			})
		}
	}
	for _, link := range in.doc.Links {
		if !anchorTextIsURL(link.Text) {
			continue
		}
		findings = append(findings, Finding{
			Rule:     RuleRawURLsInCopy,
			Severity: SeverityAdvisory,
			Message:  fmt.Sprintf("anchor text is a bare url: %q", link.Text),
			Location: linkLocation(link.Index),
		})
	}
	return findings
}

func anchorTextIsURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if schemeURLPattern.FindString(text) == text {
		return true
	}
	if strings.HasPrefix(strings.ToLower(text), "www.") {
		return false
	}
	return bareDomainPattern.FindString(text) == text
}

func hasURLPrefix(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func containedInAny(needle string, haystacks []string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

// checkNonCanonicalLinks flags links whose host matches the configured
// denylist of redirector and CDN domains. Matching is by substring of the
// hostname, so list entries may be full domains or fragments like
// "cdn-images".
func checkNonCanonicalLinks(in ruleInput) []Finding {
	var findings []Finding
	for _, link := range in.doc.Links {
		parsed, err := url.Parse(link.Href)
		if err != nil {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		if host == "" {
			continue
		}
		for _, entry := range in.cfg.DenylistDomains {
			if strings.Contains(host, entry) {
				findings = append(findings, Finding{
					Rule:     RuleNonCanonicalLinks,
					Severity: SeverityAdvisory,
					Message:  fmt.Sprintf("link host %q matches denylist entry %q", host, entry),
					Location: linkLocation(link.Index),
				})
				break
			}
		}
	}
	return findings
}

func checkGenericLinkText(in ruleInput) []Finding {
	stoplist := make(map[string]struct{}, len(in.cfg.GenericLinkText))
	for _, entry := range in.cfg.GenericLinkText {
		stoplist[entry] = struct{}{}
	}
	var findings []Finding
	for _, link := range in.doc.Links {
		text := strings.ToLower(strings.TrimSpace(link.Text))
		if text == "" {
			continue
		}
		_, generic := stoplist[text]
		if !generic && !placeholderURLRef.MatchString(text) {
			continue
		}
		findings = append(findings, Finding{
			Rule:     RuleGenericLinkText,
			Severity: SeverityAdvisory,
			Message:  fmt.Sprintf("generic link text %q", link.Text),
			Location: linkLocation(link.Index),
		})
	}
	return findings
}
