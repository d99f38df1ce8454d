package afreeca

import (
	"bytes"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// flexInt accepts both 12 and "12"; the board API is not consistent.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

type commentItem struct {
	UserNick   string  `json:"user_nick"`
	UserID     string  `json:"user_id"`
	LikeCnt    flexInt `json:"like_cnt"`
	PCommentNo flexInt `json:"p_comment_no"`
	Comment    string  `json:"comment"`
}

type commentPage struct {
	Data []commentItem `json:"data"`
	Meta struct {
		CurrentPage flexInt `json:"current_page"`
		LastPage    flexInt `json:"last_page"`
	} `json:"meta"`
}

func (c *Client) GetCommentPage(ctx context.Context, post Post, page int) (commentPage, error) {
	if page <= 0 {
		page = 1
	}
	path := post.CommentPath()
	r, err := c.boardClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":    strconv.Itoa(page),
			"orderby": "like_cnt",
		}).
		Get(path)
	if err != nil {
		return commentPage{}, crawler.NewTransportError(platformName, path, err)
	}
	if !r.IsSuccess() {
		return commentPage{}, crawler.NewHTTPStatusError(platformName, path, r.StatusCode(), r.String())
	}
	if r.StatusCode() == http.StatusNoContent {
		return commentPage{}, nil
	}
	// The board API does not always label its JSON, and a maintenance page
	// comes back as 200 text/html. Anything that does not decode is a failure.
	var out commentPage
	if err := json.Unmarshal(r.Body(), &out); err != nil {
		return commentPage{}, crawler.NewTransportError(platformName, path, fmt.Errorf("decode comment page %d: %w", page, err))
	}
	return out, nil
}

type commentClient interface {
	GetCommentPage(ctx context.Context, post Post, page int) (commentPage, error)
}

// fetchAllComments walks every page of the post in like_cnt order and ranks
// rows as they arrive. It stops on an empty page or once the reported last
// page has been read. Any page error aborts the walk.
func fetchAllComments(ctx context.Context, client commentClient, post Post) ([]crawler.CommentRow, int, error) {
	page := 1
	rank := 1
	pages := 0
	out := make([]crawler.CommentRow, 0, 64)
	for {
		resp, err := client.GetCommentPage(ctx, post, page)
		if err != nil {
			return nil, pages, err
		}
		pages++
		logger.Info("request success", "page", page, "items", len(resp.Data), "last_page", int64(resp.Meta.LastPage))

		if len(resp.Data) == 0 {
			break
		}
		for _, it := range resp.Data {
			out = append(out, crawler.CommentRow{
				Rank:      rank,
				Nickname:  strings.TrimSpace(it.UserNick),
				UserID:    strings.TrimSpace(it.UserID),
				CommentNo: int64(it.PCommentNo),
				Permalink: post.Permalink(int64(it.PCommentNo)),
				LikeCount: int(it.LikeCnt),
				Comment:   it.Comment,
			})
			rank++
		}

		if int64(page) >= int64(resp.Meta.LastPage) {
			break
		}
		page++
	}
	return out, pages, nil
}
