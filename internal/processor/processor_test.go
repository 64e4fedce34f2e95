package processor

import (
	"strings"
	"testing"
)

func TestProcessor_ConvertHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string // Expected substrings in output
	}{
		{
			name: "converts headings",
			html: `<html><body><h1>Title</h1><h2>Subtitle</h2></body></html>`,
			contains: []string{
				"# Title",
				"## Subtitle",
			},
		},
		{
			name: "converts paragraphs",
			html: `<html><body><p>Hello world.</p><p>Second paragraph.</p></body></html>`,
			contains: []string{
				"Hello world.",
				"Second paragraph.",
			},
		},
		{
			name: "converts links",
			html: `<html><body><p>Check <a href="https://example.com">this link</a>.</p></body></html>`,
			contains: []string{
				"[this link](https://example.com)",
			},
		},
		{
			name: "converts code blocks",
			html: `<html><body><pre><code>func main() {}</code></pre></body></html>`,
			contains: []string{
				"func main() {}",
			},
		},
		{
			name: "converts inline code",
			html: `<html><body><p>Use <code>go run</code> to execute.</p></body></html>`,
			contains: []string{
				"`go run`",
			},
		},
		{
			name: "converts lists",
			html: `<html><body><ul><li>Item 1</li><li>Item 2</li></ul></body></html>`,
			contains: []string{
				"Item 1",
				"Item 2",
			},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
		})
	}
}

func TestProcessor_ConvertEmptyInput(t *testing.T) {
	result, err := New().Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result != "" {
		t.Errorf("Convert(\"\") = %q, want empty", result)
	}
}

func TestProcessor_ExtractArticle_Title(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title element",
			html: `<html><head><title>Page Title</title></head><body><p>Content</p></body></html>`,
			want: "Page Title",
		},
		{
			name: "og:title wins",
			html: `<html><head><meta property="og:title" content="Open Graph"><title>Page Title</title></head></html>`,
			want: "Open Graph",
		},
		{
			name: "falls back to url",
			html: `<html><body><p>No title here</p></body></html>`,
			want: "https://example.com/untitled",
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := p.ExtractArticle("https://example.com/untitled", "text/html", tt.html)
			if err != nil {
				t.Fatalf("ExtractArticle() error = %v", err)
			}
			if a.Title != tt.want {
				t.Errorf("Title = %q, want %q", a.Title, tt.want)
			}
		})
	}
}

func TestProcessor_ExtractArticle_HTML(t *testing.T) {
	page := `<html><head>
<title>Fallback</title>
<meta property="og:title" content="Rates held steady">
<meta property="article:section" content="Business">
<meta property="article:published_time" content="2024-03-01T09:30:00Z">
</head><body>
<nav><p>Menu</p></nav>
<article>
<p>The central bank kept   rates unchanged.</p>
<p>Markets <b>rallied</b> on the news.</p>
</article>
<footer><p>Copyright</p></footer>
</body></html>`

	a, err := New().ExtractArticle("https://example.com/business/rates", "text/html", page)
	if err != nil {
		t.Fatalf("ExtractArticle() error = %v", err)
	}

	if a.Title != "Rates held steady" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Section != "Business" {
		t.Errorf("Section = %q", a.Section)
	}
	if a.PublishedAt.IsZero() || a.PublishedAt.Year() != 2024 {
		t.Errorf("PublishedAt = %v", a.PublishedAt)
	}
	want := "The central bank kept rates unchanged.\n\nMarkets rallied on the news."
	if a.BodyText != want {
		t.Errorf("BodyText = %q, want %q", a.BodyText, want)
	}
	if a.ID == "" || a.URL != "https://example.com/business/rates" {
		t.Errorf("ID/URL not set: %+v", a)
	}
}

func TestProcessor_ExtractArticle_WithoutArticleElement(t *testing.T) {
	page := `<html><head><title>Plain page</title></head><body><p>One.</p><div><p>Two.</p></div></body></html>`

	a, err := New().ExtractArticle("https://example.com/plain", "text/html", page)
	if err != nil {
		t.Fatalf("ExtractArticle() error = %v", err)
	}
	if a.Title != "Plain page" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.BodyText != "One.\n\nTwo." {
		t.Errorf("BodyText = %q", a.BodyText)
	}
}

func TestProcessor_ExtractArticle_Markdown(t *testing.T) {
	md := "# Election results\n\nTurnout was **high** across the country."

	a, err := New().ExtractArticle("https://example.com/election.md", "text/markdown", md)
	if err != nil {
		t.Fatalf("ExtractArticle() error = %v", err)
	}
	if a.Title != "Election results" {
		t.Errorf("Title = %q", a.Title)
	}
	if !strings.Contains(a.BodyText, "Turnout was high across the country.") {
		t.Errorf("BodyText = %q", a.BodyText)
	}
}

func TestProcessor_ExtractArticle_StableID(t *testing.T) {
	p := New()
	a, _ := p.ExtractArticle("https://example.com/x", "text/html", "<p>a</p>")
	b, _ := p.ExtractArticle("https://example.com/x", "text/html", "<p>b</p>")
	if a.ID != b.ID {
		t.Errorf("same URL produced ids %q and %q", a.ID, b.ID)
	}
}

func TestProcessor_ExtractArticle_Readability(t *testing.T) {
	page := `<html><head><title>Flood defences</title></head><body>
<div class="story">
<div>Engineers finished the new flood defences on the river this week, after three years of work, and the council says the barrier will protect several thousand homes.</div>
<div>Residents, who had been flooded twice in the last decade, welcomed the news, although some said the work had taken far too long to complete.</div>
</div>
</body></html>`

	plain, err := New().ExtractArticle("https://example.com/floods", "text/html", page)
	if err != nil {
		t.Fatalf("ExtractArticle() error = %v", err)
	}
	if plain.BodyText != "" {
		t.Errorf("without readability BodyText = %q, want empty", plain.BodyText)
	}

	a, err := New(WithReadability()).ExtractArticle("https://example.com/floods", "text/html", page)
	if err != nil {
		t.Fatalf("ExtractArticle() error = %v", err)
	}
	if !strings.Contains(a.BodyText, "Engineers finished the new flood defences") {
		t.Errorf("BodyText = %q", a.BodyText)
	}
	if a.Title != "Flood defences" {
		t.Errorf("Title = %q", a.Title)
	}
}
