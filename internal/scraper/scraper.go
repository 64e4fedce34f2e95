package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/mfenderov/newsrec/internal/processor"
	"github.com/mfenderov/newsrec/internal/storage"
	"github.com/mfenderov/newsrec/pkg/models"
)

// Config holds scraper configuration.
type Config struct {
	Delay       time.Duration
	MaxDepth    int
	FollowLinks bool
	UserAgent   string
	Timeout     time.Duration
	Parallelism int
	Readability bool
}

// Scraper crawls news sites and extracts articles from the pages it fetches.
type Scraper struct {
	config    Config
	processor *processor.Processor
}

// page is a fetched response before extraction.
type page struct {
	url         string
	contentType string
	content     string
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "newsrec/1.0"
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 2
	}
	var opts []processor.Option
	if config.Readability {
		opts = append(opts, processor.WithReadability())
	}
	return &Scraper{
		config:    config,
		processor: processor.New(opts...),
	}
}

// Scrape crawls startURL and returns the articles found. Pages without any
// paragraph text, such as section fronts, are skipped.
func (s *Scraper) Scrape(ctx context.Context, startURL string) ([]models.Article, error) {
	pages, err := s.crawl(ctx, startURL)
	articles := s.extract(pages)
	return articles, err
}

func (s *Scraper) extract(pages []page) []models.Article {
	var articles []models.Article
	for _, p := range pages {
		a, err := s.processor.ExtractArticle(p.url, p.contentType, p.content)
		if err != nil {
			slog.Warn("failed to extract article", "url", p.url, "error", err)
			continue
		}
		if strings.TrimSpace(a.BodyText) == "" {
			slog.Debug("skipping page without body text", "url", p.url)
			continue
		}
		articles = append(articles, a)
	}
	return articles
}

func (s *Scraper) crawl(ctx context.Context, startURL string) ([]page, error) {
	var (
		pages     []page
		mu        sync.Mutex
		cancelled bool
	)

	slog.Debug("starting scrape", "url", startURL, "max_depth", s.config.MaxDepth)

	parsedURL, err := url.Parse(startURL)
	if err != nil {
		slog.Error("failed to parse URL", "url", startURL, "error", err)
		return nil, err
	}

	c := colly.NewCollector(
		colly.MaxDepth(s.config.MaxDepth),
		colly.UserAgent(s.config.UserAgent),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: s.config.Parallelism,
	})
	c.SetRequestTimeout(s.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("scrape cancelled", "url", r.URL.String())
			r.Abort()
			mu.Lock()
			cancelled = true
			mu.Unlock()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 400 {
			slog.Debug("skipping page with error status", "url", r.Request.URL.String(), "status", r.StatusCode)
			return
		}

		p := page{
			url:         r.Request.URL.String(),
			contentType: r.Headers.Get("Content-Type"),
			content:     string(r.Body),
		}
		slog.Debug("fetched page", "url", p.url, "content_type", p.contentType, "size", len(p.content))

		mu.Lock()
		pages = append(pages, p)
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Debug("fetch failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	if s.config.FollowLinks {
		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			absoluteURL := e.Request.AbsoluteURL(e.Attr("href"))
			linkURL, err := url.Parse(absoluteURL)
			if err != nil {
				return
			}
			if linkURL.Host == parsedURL.Host {
				e.Request.Visit(absoluteURL)
			}
		})
	}

	if err := c.Visit(startURL); err != nil {
		slog.Debug("visit error (continuing)", "url", startURL, "error", err)
		return pages, nil
	}
	c.Wait()

	if cancelled {
		slog.Info("scrape cancelled by context", "pages_fetched", len(pages))
		return pages, ctx.Err()
	}

	slog.Debug("scrape complete", "url", startURL, "pages", len(pages))
	return pages, nil
}

// CorpusWriter persists a crawled corpus.
type CorpusWriter interface {
	PutCorpus(ctx context.Context, prefix string, articles []models.Article) error
	PutPage(ctx context.Context, prefix, articleID, content string) error
	PutMetadata(ctx context.Context, prefix string, meta storage.CorpusMetadata) error
}

// ScrapeResult holds the result of a ScrapeToStorage operation.
type ScrapeResult struct {
	Prefix       string // storage prefix holding the corpus
	ArticleCount int
	SourceURL    string
}

// NewPrefix returns a unique storage prefix of the form
// corpora/{host}/{timestamp}-{shortid}.
func NewPrefix(startURL string, now time.Time) (string, error) {
	parsedURL, err := url.Parse(startURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL has no host: %s", startURL)
	}

	timestamp := now.UTC().Format("2006-01-02T15-04-05")
	shortID := models.GenerateArticleID(fmt.Sprintf("%s-%d", startURL, now.UnixNano()))[:8]
	return fmt.Sprintf("%s/%s/%s-%s", storage.RootPrefix, parsedURL.Host, timestamp, shortID), nil
}

// ScrapeToStorage crawls startURL and writes the article CSV, a markdown
// archive per article and the corpus metadata under a fresh prefix.
func (s *Scraper) ScrapeToStorage(ctx context.Context, startURL string, w CorpusWriter) (*ScrapeResult, error) {
	prefix, err := NewPrefix(startURL, time.Now())
	if err != nil {
		return nil, err
	}

	slog.Info("starting scrape to storage", "url", startURL, "prefix", prefix)

	pages, err := s.crawl(ctx, startURL)
	if err != nil && len(pages) == 0 {
		return nil, fmt.Errorf("scrape failed: %w", err)
	}

	byURL := make(map[string]page, len(pages))
	for _, p := range pages {
		byURL[p.url] = p
	}

	articles := s.extract(pages)
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles found at %s", startURL)
	}

	if err := w.PutCorpus(ctx, prefix, articles); err != nil {
		return nil, fmt.Errorf("failed to write corpus: %w", err)
	}

	sectionSet := make(map[string]struct{})
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
		if a.Section != "" {
			sectionSet[a.Section] = struct{}{}
		}

		md := s.markdown(byURL[a.URL])
		if err := w.PutPage(ctx, prefix, a.ID, md); err != nil {
			slog.Error("failed to archive page", "url", a.URL, "error", err)
		}
	}

	sections := make([]string, 0, len(sectionSet))
	for sec := range sectionSet {
		sections = append(sections, sec)
	}
	sort.Strings(sections)

	meta := storage.CorpusMetadata{
		SourceURL:    startURL,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ArticleCount: len(articles),
		Sections:     sections,
		ArticleIDs:   ids,
	}
	if err := w.PutMetadata(ctx, prefix, meta); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	slog.Info("scrape to storage complete", "url", startURL, "prefix", prefix, "articles", len(articles))

	return &ScrapeResult{
		Prefix:       prefix,
		ArticleCount: len(articles),
		SourceURL:    startURL,
	}, nil
}

func (s *Scraper) markdown(p page) string {
	if processor.Detect(p.url, p.contentType, p.content) {
		return p.content
	}
	md, err := s.processor.Convert(p.content)
	if err != nil {
		slog.Warn("failed to convert page to markdown", "url", p.url, "error", err)
		return p.content
	}
	return md
}
