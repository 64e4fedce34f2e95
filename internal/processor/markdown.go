package processor

import (
	"regexp"
	"strings"
)

var (
	headingPattern  = regexp.MustCompile(`^#{1,6}\s+\S`)
	listPattern     = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern     = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)
	imagePattern    = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	fencePattern    = regexp.MustCompile("(?m)^```.*$")
	emphasisPattern = regexp.MustCompile(`(\*\*|__|\*|_|` + "`" + `)`)
	prefixPattern   = regexp.MustCompile(`(?m)^\s{0,3}(#{1,6}|>|[\-\*+]|\d+\.)\s+`)
)

// IsMarkdownContentType checks if the Content-Type header indicates markdown.
func IsMarkdownContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/markdown") ||
		strings.HasPrefix(ct, "text/x-markdown")
}

// IsMarkdownURL checks if the URL indicates a markdown file.
func IsMarkdownURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".md") ||
		strings.HasSuffix(lower, ".markdown")
}

// IsMarkdownContent uses heuristics to detect if content is markdown.
func IsMarkdownContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || looksLikeHTML(trimmed) {
		return false
	}
	return headingPattern.MatchString(trimmed) ||
		listPattern.MatchString(trimmed) ||
		linkPattern.MatchString(trimmed)
}

func looksLikeHTML(content string) bool {
	lower := strings.ToLower(content)
	for _, prefix := range []string{"<!doctype", "<html", "<head", "<body"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Detect reports whether a page is markdown, checking Content-Type, then
// URL, then content heuristics.
func Detect(url, contentType, content string) bool {
	if IsMarkdownContentType(contentType) {
		return true
	}
	if IsMarkdownURL(url) {
		return true
	}
	return IsMarkdownContent(content)
}

// MarkdownTitle returns the first H1 heading of a markdown document.
func MarkdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// PlainText strips markdown syntax, keeping link text and paragraph breaks.
func PlainText(md string) string {
	text := fencePattern.ReplaceAllString(md, "")
	text = imagePattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = prefixPattern.ReplaceAllString(text, "")
	text = emphasisPattern.ReplaceAllString(text, "")

	var paras []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := normalizeSpace(block); p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}
