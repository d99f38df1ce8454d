package crawler

import (
	"context"
	"strings"
	"time"
)

// RunRequest is the immutable input of a single run.
type RunRequest struct {
	PostURL        string `json:"post_url"`
	SheetName      string `json:"sheet_name"`
	ShareEmail     string `json:"share_email,omitempty"`
	FavoriteCutoff int    `json:"favorite_cutoff,omitempty"`
}

// Validate reports the first missing or malformed form value as a config error.
func (r RunRequest) Validate() error {
	if strings.TrimSpace(r.PostURL) == "" {
		return NewConfigError("post url is required")
	}
	if strings.TrimSpace(r.SheetName) == "" {
		return NewConfigError("sheet name is required")
	}
	if r.FavoriteCutoff < 0 {
		return NewConfigError("favorite cutoff must not be negative")
	}
	return nil
}

// EnrichmentEnabled reports whether rows get a favorite-count check.
func (r RunRequest) EnrichmentEnabled() bool {
	return r.FavoriteCutoff > 0
}

type FavoriteStatus string

const (
	FavoriteNone    FavoriteStatus = ""
	FavoriteMet     FavoriteStatus = "met"
	FavoriteNotMet  FavoriteStatus = "not_met"
	FavoriteUnknown FavoriteStatus = "unknown"
)

// CommentRow is one ranked commenter. Rank follows the API's like_cnt order.
type CommentRow struct {
	Rank      int            `json:"rank"`
	Nickname  string         `json:"nickname"`
	UserID    string         `json:"user_id,omitempty"`
	CommentNo int64          `json:"comment_no"`
	Permalink string         `json:"permalink"`
	LikeCount int            `json:"like_count"`
	Comment   string         `json:"comment,omitempty"`
	Favorite  FavoriteStatus `json:"favorite,omitempty"`
}

type Result struct {
	RunID      string         `json:"run_id,omitempty"`
	Platform   string         `json:"platform,omitempty"`
	SheetName  string         `json:"sheet_name,omitempty"`
	StartedAt  int64          `json:"started_at,omitempty"`
	FinishedAt int64          `json:"finished_at,omitempty"`
	Pages      int            `json:"pages,omitempty"`
	Fetched    int            `json:"fetched,omitempty"`
	Appended   int            `json:"appended,omitempty"`
	Favorites  map[string]int `json:"favorites,omitempty"`
}

func NewResult(platform string, req RunRequest) Result {
	return Result{
		Platform:  platform,
		SheetName: req.SheetName,
		StartedAt: time.Now().Unix(),
	}
}

type Runner interface {
	Run(ctx context.Context, req RunRequest) (Result, error)
}
