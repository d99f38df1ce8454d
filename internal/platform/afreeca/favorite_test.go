package afreeca

import (
	"comment-ranker/internal/cache"
	"comment-ranker/internal/crawler"
	"context"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		fans, cutoff int
		want         crawler.FavoriteStatus
	}{
		{1000, 1000, crawler.FavoriteMet},
		{1001, 1000, crawler.FavoriteMet},
		{999, 1000, crawler.FavoriteNotMet},
		{0, 1, crawler.FavoriteNotMet},
		{FanCountUnknown, 1000, crawler.FavoriteUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.fans, tc.cutoff); got != tc.want {
			t.Fatalf("Classify(%d, %d) = %q, want %q", tc.fans, tc.cutoff, got, tc.want)
		}
	}
}

func TestGetFanCount(t *testing.T) {
	api := &fakeAPI{fans: map[string]int{"fan": 1000, "broken": -1}}
	srv := newFakeAPI(t, api)
	c := NewClient(testConfig(srv.URL))

	n, err := c.GetFanCount(context.Background(), "fan")
	if err != nil || n != 1000 {
		t.Fatalf("GetFanCount(fan) = %d, %v", n, err)
	}
	n, err = c.GetFanCount(context.Background(), "ghost")
	if err != nil || n != FanCountUnknown {
		t.Fatalf("GetFanCount(ghost) = %d, %v", n, err)
	}
	_, err = c.GetFanCount(context.Background(), "broken")
	if crawler.KindOf(err) != crawler.ErrorKindTransport {
		t.Fatalf("GetFanCount(broken) err = %v", err)
	}
}

func TestFavoriteCheckerEnrich(t *testing.T) {
	api := &fakeAPI{fans: map[string]int{"fan": 1000, "small": 10, "broken": -1}}
	srv := newFakeAPI(t, api)
	mc := cache.NewMemoryCache()
	defer mc.Close()
	fc := NewFavoriteChecker(NewClient(testConfig(srv.URL)), mc, time.Minute)

	cases := map[string]crawler.FavoriteStatus{
		"fan":    crawler.FavoriteMet,
		"small":  crawler.FavoriteNotMet,
		"ghost":  crawler.FavoriteUnknown,
		"broken": crawler.FavoriteUnknown,
	}
	for id, want := range cases {
		row := fc.Enrich(context.Background(), crawler.CommentRow{Rank: 1, UserID: id}, 1000)
		if row.Favorite != want {
			t.Fatalf("Enrich(%s) = %q, want %q", id, row.Favorite, want)
		}
	}

	// second pass: successful counts come from the cache, failures are retried
	for id := range cases {
		fc.Enrich(context.Background(), crawler.CommentRow{UserID: id}, 1000)
	}
	if n := api.hitCount("station:fan"); n != 1 {
		t.Fatalf("station hits for fan = %d, want 1", n)
	}
	if n := api.hitCount("station:ghost"); n != 2 {
		t.Fatalf("station hits for ghost = %d, want 2", n)
	}
}
