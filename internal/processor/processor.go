package processor

import (
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/mfenderov/newsrec/pkg/models"
)

// Processor turns fetched pages into articles.
type Processor struct {
	readability bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithReadability falls back to readability scoring for pages whose text
// is not marked up as paragraphs.
func WithReadability() Option {
	return func(p *Processor) {
		p.readability = true
	}
}

// New creates a new page processor.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// ExtractArticle builds an article from a fetched page. Markdown pages take
// their title from the first H1; HTML pages from og:title or <title>, with
// section and publication date from article:* meta tags. The body is the
// text of the <article> paragraphs, or of every paragraph when the page has
// no <article> element.
func (p *Processor) ExtractArticle(pageURL, contentType, content string) (models.Article, error) {
	a := models.Article{
		ID:  models.GenerateArticleID(pageURL),
		URL: pageURL,
	}

	if Detect(pageURL, contentType, content) {
		a.Title = MarkdownTitle(content)
		a.BodyText = PlainText(content)
		if a.Title == "" {
			a.Title = pageURL
		}
		return a, nil
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return models.Article{}, err
	}

	meta := collectMeta(doc)
	a.Title = pageTitle(doc, meta)
	if a.Title == "" {
		a.Title = pageURL
	}
	a.Section = meta["article:section"]
	if raw := meta["article:published_time"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			a.PublishedAt = t
		}
	}

	root := doc
	if article := findElement(doc, "article"); article != nil {
		root = article
	}
	a.BodyText = strings.Join(paragraphs(root), "\n\n")

	if a.BodyText == "" && p.readability {
		p.readable(&a, content)
	}

	return a, nil
}

// pageTitle prefers og:title over <title>.
func pageTitle(doc *html.Node, meta map[string]string) string {
	if t := meta["og:title"]; t != "" {
		return t
	}
	return titleOf(doc)
}

func (p *Processor) readable(a *models.Article, content string) {
	pageURL, err := url.Parse(a.URL)
	if err != nil {
		return
	}
	parsed, err := readability.FromReader(strings.NewReader(content), pageURL)
	if err != nil {
		return
	}
	a.BodyText = normalizeSpace(parsed.TextContent)
	if a.Title == a.URL && parsed.Title != "" {
		a.Title = parsed.Title
	}
}

func collectMeta(doc *html.Node) map[string]string {
	meta := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var key, value string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property", "name":
					key = attr.Val
				case "content":
					value = attr.Val
				}
			}
			if key != "" {
				if _, seen := meta[key]; !seen {
					meta[key] = strings.TrimSpace(value)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

func titleOf(doc *html.Node) string {
	n := findElement(doc, "title")
	if n == nil || n.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func paragraphs(root *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "aside":
				return
			case "p":
				if text := normalizeSpace(textContent(n)); text != "" {
					out = append(out, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
