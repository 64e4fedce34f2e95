package processor

import (
	"strings"
	"testing"
)

func TestMarkdownSignals(t *testing.T) {
	t.Run("content type", func(t *testing.T) {
		for ct, want := range map[string]bool{
			"text/markdown":                true,
			"text/x-markdown":              true,
			"Text/Markdown; charset=utf-8": true,
			"text/html; charset=utf-8":     false,
			"application/rss+xml":          false,
			"":                             false,
		} {
			if got := IsMarkdownContentType(ct); got != want {
				t.Errorf("IsMarkdownContentType(%q) = %v, want %v", ct, got, want)
			}
		}
	})

	t.Run("url", func(t *testing.T) {
		for u, want := range map[string]bool{
			"https://news.example.com/archive/2024-03-01.md":  true,
			"https://news.example.com/feeds/world.MARKDOWN":   true,
			"https://news.example.com/world/2024/mar/01/vote": false,
			"https://news.example.com/md/politics":           false,
		} {
			if got := IsMarkdownURL(u); got != want {
				t.Errorf("IsMarkdownURL(%q) = %v, want %v", u, got, want)
			}
		}
	})
}

func TestIsMarkdownContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"headline", "# Election results\n\nCounting continues.", true},
		{"section heading", "## Business\n\nShares fell.", true},
		{"bulleted briefing", "- Rates held\n- Pound steady", true},
		{"inline link", "Read the [full report](https://example.com/report).", true},
		{"html page", "<!DOCTYPE html><html><body><p>Shares fell.</p></body></html>", false},
		{"html fragment", "<body><h1>Headline</h1></body>", false},
		{"plain sentence", "Shares fell sharply on Monday.", false},
		{"blank", "   \n  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMarkdownContent(tt.content); got != tt.want {
				t.Errorf("IsMarkdownContent(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		content     string
		want        bool
	}{
		{"header wins", "https://news.example.com/story", "text/markdown", "<html></html>", true},
		{"extension", "https://news.example.com/story.md", "text/plain", "plain", true},
		{"sniffed", "https://news.example.com/story", "text/plain", "# Headline\n\nBody.", true},
		{"article page", "https://news.example.com/story", "text/html", "<html><body><p>Body.</p></body></html>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.url, tt.contentType, tt.content); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkdownTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"first h1", "intro\n# Markets rally\n# Second", "Markets rally"},
		{"h2 ignored", "## Sub\n\ntext", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownTitle(tt.content); got != tt.want {
				t.Errorf("MarkdownTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	md := "# Heading\n\nSome **bold** text with a [link](https://example.com).\n\n" +
		"![chart](img.png)\n\n- first item\n\n```\ncode\n```"

	got := PlainText(md)

	for _, want := range []string{"Heading", "Some bold text with a link.", "first item"} {
		if !strings.Contains(got, want) {
			t.Errorf("PlainText() missing %q, got:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"**", "](", "![", "```", "# "} {
		if strings.Contains(got, unwanted) {
			t.Errorf("PlainText() kept %q, got:\n%s", unwanted, got)
		}
	}
}
