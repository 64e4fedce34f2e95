package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfenderov/newsrec/internal/session"
	"github.com/mfenderov/newsrec/pkg/models"
)

const (
	ratingLike    = "like"
	ratingDislike = "dislike"
)

// History is the user_history result.
type History struct {
	Username  string           `json:"username"`
	Read      []models.Article `json:"read"`
	Likes     int              `json:"likes"`
	Dislikes  int              `json:"dislikes"`
	LikeShare float64          `json:"like_share"`
}

func (s *Server) addSessionTools() {
	user := mcp.WithString("user",
		mcp.Required(),
		mcp.Description("Registered user name"),
	)

	s.mcpServer.AddTool(mcp.NewTool("mark_read",
		mcp.WithDescription("Record that a user has read an article. Read articles seed recommend_for_user."),
		user,
		mcp.WithString("article_id",
			mcp.Required(),
			mcp.Description("ID of the article read"),
		),
	), s.markReadHandler)

	s.mcpServer.AddTool(mcp.NewTool("rate_article",
		mcp.WithDescription("Record whether a user liked or disliked an article"),
		user,
		mcp.WithString("article_id",
			mcp.Required(),
			mcp.Description("ID of the rated article"),
		),
		mcp.WithString("rating",
			mcp.Required(),
			mcp.Enum(ratingLike, ratingDislike),
			mcp.Description("like or dislike"),
		),
	), s.rateHandler)

	s.mcpServer.AddTool(mcp.NewTool("recommend_for_user",
		mcp.WithDescription("Recommend unread articles similar to each article the user has read, in reading order"),
		user,
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Recommendations per read article (default: %d)", s.config.DefaultK)),
		),
	), s.recommendForUserHandler)

	s.mcpServer.AddTool(mcp.NewTool("user_history",
		mcp.WithDescription("List the articles a user has read and count their likes and dislikes"),
		user,
	), s.historyHandler)
}

// updateSession loads the session of user, applies fn and saves it when fn
// reports a change.
func (s *Server) updateSession(ctx context.Context, user string, fn func(*session.Session) bool) (*session.Session, error) {
	sess, err := s.deps.Sessions.LoadSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if fn(sess) {
		if err := s.deps.Sessions.SaveSession(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (s *Server) markReadHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user")
	if err != nil {
		return mcp.NewToolResultError("user parameter is required"), nil
	}
	id, err := req.RequireString("article_id")
	if err != nil {
		return mcp.NewToolResultError("article_id parameter is required"), nil
	}
	if _, err := s.deps.Engine.Article(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("article not found: %s", id)), nil
	}

	sess, err := s.updateSession(ctx, user, func(sess *session.Session) bool {
		return sess.MarkRead(id)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mark read failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s has read %d articles", sess.Username, len(sess.ReadIDs))), nil
}

func (s *Server) rateHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user")
	if err != nil {
		return mcp.NewToolResultError("user parameter is required"), nil
	}
	id, err := req.RequireString("article_id")
	if err != nil {
		return mcp.NewToolResultError("article_id parameter is required"), nil
	}
	rating := req.GetString("rating", "")
	if rating != ratingLike && rating != ratingDislike {
		return mcp.NewToolResultError("rating must be like or dislike"), nil
	}
	if _, err := s.deps.Engine.Article(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("article not found: %s", id)), nil
	}

	sess, err := s.updateSession(ctx, user, func(sess *session.Session) bool {
		if rating == ratingLike {
			return sess.Like(id)
		}
		return sess.Dislike(id)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rate failed: %v", err)), nil
	}
	return jsonResult(sess.Stats())
}

func (s *Server) recommendForUserHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user")
	if err != nil {
		return mcp.NewToolResultError("user parameter is required"), nil
	}
	limit := req.GetInt("limit", s.config.DefaultK)

	sess, err := s.deps.Sessions.LoadSession(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommend failed: %v", err)), nil
	}
	snap := s.deps.Engine.Snapshot()
	if snap == nil {
		return mcp.NewToolResultError("recommend failed: no corpus loaded"), nil
	}

	recs, err := sess.Recommendations(snap.Recommender, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommend failed: %v", err)), nil
	}
	if recs == nil {
		recs = []models.Article{}
	}
	return jsonResult(recs)
}

func (s *Server) historyHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user")
	if err != nil {
		return mcp.NewToolResultError("user parameter is required"), nil
	}

	sess, err := s.deps.Sessions.LoadSession(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	snap := s.deps.Engine.Snapshot()
	if snap == nil {
		return mcp.NewToolResultError("history failed: no corpus loaded"), nil
	}

	stats := sess.Stats()
	return jsonResult(History{
		Username:  sess.Username,
		Read:      sess.ReadArticles(snap.Corpus),
		Likes:     stats.Likes,
		Dislikes:  stats.Dislikes,
		LikeShare: stats.LikeShare(),
	})
}
