package afreeca

import (
	"comment-ranker/internal/crawler"
	"testing"
)

func TestParsePostURL(t *testing.T) {
	cases := []struct {
		in      string
		bj      string
		post    string
		url     string
		wantErr bool
	}{
		{in: "https://bj.afreecatv.com/243000/post/129323759", bj: "243000", post: "129323759", url: "https://bj.afreecatv.com/243000/post/129323759"},
		{in: "  bj.afreecatv.com/chuny_land/post/42/?foo=1#x ", bj: "chuny_land", post: "42", url: "https://bj.afreecatv.com/chuny_land/post/42"},
		{in: "http://bj.afreecatv.com/a1/post/7", bj: "a1", post: "7", url: "http://bj.afreecatv.com/a1/post/7"},
		{in: "", wantErr: true},
		{in: "https://bj.afreecatv.com/243000", wantErr: true},
		{in: "https://bj.afreecatv.com/243000/post/abc", wantErr: true},
	}
	for _, tc := range cases {
		p, err := ParsePostURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParsePostURL(%q) expected error", tc.in)
			}
			if !crawler.IsConfigError(err) {
				t.Fatalf("ParsePostURL(%q) err kind = %s, want config", tc.in, crawler.KindOf(err))
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePostURL(%q) err: %v", tc.in, err)
		}
		if p.BroadcasterID != tc.bj || p.PostID != tc.post || p.URL != tc.url {
			t.Fatalf("ParsePostURL(%q) = %+v", tc.in, p)
		}
	}
}

func TestPostPaths(t *testing.T) {
	p := Post{BroadcasterID: "243000", PostID: "129323759", URL: "https://bj.afreecatv.com/243000/post/129323759"}
	if got := p.CommentPath(); got != "/api/243000/title/129323759/comment" {
		t.Fatalf("CommentPath = %q", got)
	}
	if got := p.Permalink(5012); got != "https://bj.afreecatv.com/243000/post/129323759#comment_noti5012" {
		t.Fatalf("Permalink = %q", got)
	}
}
