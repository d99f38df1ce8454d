package afreeca

import (
	"comment-ranker/internal/crawler"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var rePostPath = regexp.MustCompile(`^/([A-Za-z0-9_]+)/post/(\d+)/?$`)

// Post identifies one board post. URL is the canonical post address without
// query or fragment, used as the base of comment permalinks.
type Post struct {
	BroadcasterID string
	PostID        string
	URL           string
}

func ParsePostURL(input string) (Post, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Post{}, crawler.NewConfigError("post url is empty")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return Post{}, crawler.NewConfigError(fmt.Sprintf("invalid post url: %s", input))
	}
	m := rePostPath.FindStringSubmatch(u.Path)
	if len(m) != 3 {
		return Post{}, crawler.NewConfigError(fmt.Sprintf("not a post url (want /{id}/post/{no}): %s", input))
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return Post{
		BroadcasterID: m[1],
		PostID:        m[2],
		URL:           fmt.Sprintf("%s://%s/%s/post/%s", scheme, u.Host, m[1], m[2]),
	}, nil
}

func (p Post) CommentPath() string {
	return fmt.Sprintf("/api/%s/title/%s/comment", p.BroadcasterID, p.PostID)
}

func (p Post) Permalink(commentNo int64) string {
	return p.URL + "#comment_noti" + strconv.FormatInt(commentNo, 10)
}
