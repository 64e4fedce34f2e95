package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/newsrec/internal/engine"
	"github.com/mfenderov/newsrec/internal/expand"
	"github.com/mfenderov/newsrec/internal/recommend"
	"github.com/mfenderov/newsrec/internal/search"
	"github.com/mfenderov/newsrec/internal/session"
	"github.com/mfenderov/newsrec/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name        string
	Version     string
	DefaultK    int
	SearchLimit int
}

// ArticleIndex looks articles up in an external index. A nil article means
// the index does not hold the id.
type ArticleIndex interface {
	GetArticle(ctx context.Context, id string) (*models.Article, error)
}

// SessionStore persists per-user reading history.
type SessionStore interface {
	LoadSession(ctx context.Context, username string) (*session.Session, error)
	SaveSession(ctx context.Context, sess *session.Session) error
}

// Deps are the services the tools call into. Index and Articles are
// optional; without them searches and lookups use the loaded corpus. The
// user tools are registered only when Sessions is set.
type Deps struct {
	Engine   *engine.Engine
	Searcher *search.Searcher
	Expander *expand.Expander
	Index    search.TitleIndex
	Articles ArticleIndex
	Sessions SessionStore
}

// Server exposes recommendation and search as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	config    Config
	deps      Deps
}

// Recommendation is one entry of a recommend_articles result.
type Recommendation struct {
	models.Article
	Score float64 `json:"score"`
}

// NewServer creates a new MCP server with the article tools registered.
func NewServer(config Config, deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if deps.Expander == nil {
		deps.Expander = expand.New(nil)
	}
	if deps.Searcher == nil {
		deps.Searcher = search.New(deps.Expander)
	}
	if config.DefaultK <= 0 {
		config.DefaultK = recommend.DefaultK
	}
	if config.SearchLimit <= 0 {
		config.SearchLimit = search.DefaultLimit
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		config:    config,
		deps:      deps,
	}

	mcpServer.AddTool(mcp.NewTool("recommend_articles",
		mcp.WithDescription("Recommend articles whose text is most similar to the given article, most similar first."),
		mcp.WithString("article_id",
			mcp.Required(),
			mcp.Description("ID of the article to find similar articles for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of recommendations (default: %d)", config.DefaultK)),
		),
	), s.recommendHandler)

	mcpServer.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Search article titles. The query is widened with synonyms before matching."),
		mcp.WithString("query",
			mcp.Description("Title search text; empty matches every article"),
		),
		mcp.WithString("section",
			mcp.Description("Restrict to one section, or \"All Sections\""),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default: %d)", config.SearchLimit)),
		),
	), s.searchHandler)

	mcpServer.AddTool(mcp.NewTool("get_article",
		mcp.WithDescription("Get a single article by ID, including its full text"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Article ID to retrieve"),
		),
	), s.getArticleHandler)

	mcpServer.AddTool(mcp.NewTool("expand_query",
		mcp.WithDescription("Show the synonym-expanded form of a search query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Query to expand"),
		),
	), s.expandHandler)

	if deps.Sessions != nil {
		s.addSessionTools()
	}

	return s, nil
}

func (s *Server) recommendHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("article_id")
	if err != nil {
		return mcp.NewToolResultError("article_id parameter is required"), nil
	}
	limit := req.GetInt("limit", s.config.DefaultK)

	recs, err := s.handleRecommend(id, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommend failed: %v", err)), nil
	}
	return jsonResult(recs)
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := search.Query{
		Text:    req.GetString("query", ""),
		Section: req.GetString("section", ""),
		Limit:   req.GetInt("limit", s.config.SearchLimit),
	}

	result, err := s.handleSearch(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (s *Server) getArticleHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	if s.deps.Articles != nil {
		a, err := s.deps.Articles.GetArticle(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get article failed: %v", err)), nil
		}
		if a != nil {
			return jsonResult(a)
		}
	}

	a, err := s.deps.Engine.Article(id)
	if errors.Is(err, recommend.ErrArticleNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("article not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get article failed: %v", err)), nil
	}
	return jsonResult(a)
}

func (s *Server) expandHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	return mcp.NewToolResultText(s.deps.Expander.Expand(ctx, query)), nil
}

func (s *Server) handleRecommend(id string, limit int) ([]Recommendation, error) {
	scored, err := s.deps.Engine.Recommend(id, limit)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, len(scored))
	for i, sc := range scored {
		recs[i] = Recommendation{Article: sc.Article, Score: sc.Score}
	}
	return recs, nil
}

func (s *Server) handleSearch(ctx context.Context, q search.Query) (*search.Result, error) {
	if s.deps.Index != nil {
		return s.deps.Searcher.SearchIndex(ctx, s.deps.Index, q)
	}

	snap := s.deps.Engine.Snapshot()
	if snap == nil {
		return nil, engine.ErrNotLoaded
	}
	return s.deps.Searcher.Search(ctx, snap.Corpus, q)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
