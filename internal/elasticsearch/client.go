package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mfenderov/newsrec/pkg/models"
)

// AllSections disables the section filter in SearchTitles.
const AllSections = "All Sections"

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client indexes and queries articles in Elasticsearch.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
	}, nil
}

// Index returns the index name.
func (c *Client) Index() string {
	return c.index
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping stores titles both analyzed and as keywords, and sections as
// keywords for exact filtering.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"url": { "type": "keyword" },
			"title": {
				"type": "text",
				"analyzer": "english",
				"fields": { "raw": { "type": "keyword" } }
			},
			"body_text": { "type": "text", "analyzer": "english" },
			"section": { "type": "keyword" },
			"published_at": { "type": "date" }
		}
	}
}`

// CreateIndex creates the index with the article mapping. It is a no-op
// when the index already exists.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

// DeleteIndex removes the index. A missing index is not an error.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error deleting index: %s", res.String())
	}
	return nil
}

// IndexArticle indexes a single article under its ID.
func (c *Client) IndexArticle(ctx context.Context, a models.Article) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(a.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index article: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing article (status %d): %s", res.StatusCode, res.String())
	}
	return nil
}

// Refresh forces an index refresh.
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.Article `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// TitleQuery builds the search body for SearchTitles. Each term is matched
// as a phrase against the title and any one match is enough. No terms
// matches every article.
func TitleQuery(terms []string, section string, limit int) map[string]any {
	boolQuery := map[string]any{}

	if len(terms) > 0 {
		should := make([]map[string]any, 0, len(terms))
		for _, term := range terms {
			should = append(should, map[string]any{
				"match_phrase": map[string]any{"title": term},
			})
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	} else {
		boolQuery["must"] = map[string]any{"match_all": map[string]any{}}
	}

	if section != "" && section != AllSections {
		boolQuery["filter"] = []map[string]any{
			{"term": map[string]any{"section": section}},
		}
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  limit,
	}
}

// SearchTitles returns articles whose title matches any of the terms,
// optionally restricted to one section, and the total hit count.
func (c *Client) SearchTitles(ctx context.Context, terms []string, section string, limit int) ([]models.Article, int, error) {
	data, err := json.Marshal(TitleQuery(terms, section, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}

	articles := make([]models.Article, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		articles[i] = hit.Source
	}
	return articles, sr.Hits.Total.Value, nil
}

type getResponse struct {
	Found  bool           `json:"found"`
	Source models.Article `json:"_source"`
}

// GetArticle retrieves an article by ID. It returns nil when the article
// is not indexed.
func (c *Client) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	res, err := c.es.Get(c.index, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !gr.Found {
		return nil, nil
	}
	return &gr.Source, nil
}
