package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfenderov/newsrec/internal/engine"
	"github.com/mfenderov/newsrec/internal/expand"
	"github.com/mfenderov/newsrec/internal/search"
	"github.com/mfenderov/newsrec/pkg/models"
)

var testArticles = []models.Article{
	{ID: "1", Title: "Happy shoppers return", Section: "Business", BodyText: "cats and dogs are pets"},
	{ID: "2", Title: "Glad news for pet owners", Section: "Money", BodyText: "dogs are loyal pets"},
	{ID: "3", Title: "Markets rise", Section: "Business", BodyText: "stock markets rose today"},
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	e := engine.New(nil)
	if _, err := e.Load(context.Background(), testArticles); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s, err := NewServer(Config{Name: "newsrec", Version: "1.0.0"}, Deps{
		Engine:   e,
		Expander: expand.New(expand.MapThesaurus{"happy": {"glad"}}),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return ""
}

func TestServer_Creation(t *testing.T) {
	s := newTestServer(t)
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
	if s.config.DefaultK != 5 || s.config.SearchLimit != 5 {
		t.Errorf("defaults not applied: %+v", s.config)
	}

	if _, err := NewServer(Config{}, Deps{}); err == nil {
		t.Error("NewServer() without an engine should fail")
	}
}

func TestServer_RecommendTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.recommendHandler(context.Background(), callRequest("recommend_articles", map[string]any{
		"article_id": "1",
		"limit":      float64(1),
	}))
	if err != nil {
		t.Fatalf("recommendHandler() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(resultText(t, res)), &recs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "2" {
		t.Errorf("recommendations = %+v, want article 2", recs)
	}
	if recs[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", recs[0].Score)
	}
}

func TestServer_RecommendTool_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing id", map[string]any{}, "article_id"},
		{"unknown id", map[string]any{"article_id": "999"}, "999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.recommendHandler(context.Background(), callRequest("recommend_articles", tt.args))
			if err != nil {
				t.Fatalf("recommendHandler() error = %v", err)
			}
			if !res.IsError {
				t.Fatal("expected a tool error")
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("error text %q should mention %q", text, tt.want)
			}
		})
	}
}

func TestServer_SearchTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.searchHandler(context.Background(), callRequest("search_articles", map[string]any{
		"query": "happy",
	}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}

	var result search.Result
	if err := json.Unmarshal([]byte(resultText(t, res)), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Pattern != "happy|glad" {
		t.Errorf("Pattern = %q, want %q", result.Pattern, "happy|glad")
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
}

func TestServer_SearchTool_Section(t *testing.T) {
	s := newTestServer(t)

	res, _ := s.searchHandler(context.Background(), callRequest("search_articles", map[string]any{
		"section": "Business",
	}))

	var result search.Result
	if err := json.Unmarshal([]byte(resultText(t, res)), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
}

type fixedIndex struct{}

func (fixedIndex) SearchTitles(context.Context, []string, string, int) ([]models.Article, int, error) {
	return []models.Article{{ID: "indexed"}}, 1, nil
}

func TestServer_SearchTool_UsesIndex(t *testing.T) {
	e := engine.New(nil)
	s, err := NewServer(Config{}, Deps{Engine: e, Index: fixedIndex{}})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	res, _ := s.searchHandler(context.Background(), callRequest("search_articles", map[string]any{"query": "x"}))
	if !strings.Contains(resultText(t, res), `"indexed"`) {
		t.Errorf("search should go to the index, got %s", resultText(t, res))
	}
}

func TestServer_GetArticleTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.getArticleHandler(context.Background(), callRequest("get_article", map[string]any{"id": "3"}))
	if err != nil {
		t.Fatalf("getArticleHandler() error = %v", err)
	}

	var a models.Article
	if err := json.Unmarshal([]byte(resultText(t, res)), &a); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if a.Title != "Markets rise" || a.BodyText == "" {
		t.Errorf("article = %+v", a)
	}

	res, _ = s.getArticleHandler(context.Background(), callRequest("get_article", map[string]any{"id": "nope"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("missing article should be a not-found tool error")
	}
}

func TestServer_ExpandTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.expandHandler(context.Background(), callRequest("expand_query", map[string]any{"query": "happy"}))
	if err != nil {
		t.Fatalf("expandHandler() error = %v", err)
	}
	if got := resultText(t, res); got != "happy|glad" {
		t.Errorf("expand_query = %q, want %q", got, "happy|glad")
	}
}
