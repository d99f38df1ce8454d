package afreeca

import (
	"comment-ranker/internal/cache"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/sheet"
	"comment-ranker/internal/store"
	"context"
	"errors"
	"testing"
	"time"
)

type archived struct {
	rec  store.RunRecord
	rows []crawler.CommentRow
}

func newTestCrawler(t *testing.T, base string, prov sheet.Provider) (*Crawler, *[]archived) {
	t.Helper()
	c := NewCrawler(testConfig(base), func(ctx context.Context) (sheet.Provider, error) { return prov, nil }, cache.NewMemoryCache())
	c.now = func() time.Time { return time.Date(2024, 3, 1, 3, 30, 0, 0, time.UTC) }
	var got []archived
	c.archive = func(ctx context.Context, rec store.RunRecord, rows []crawler.CommentRow) error {
		got = append(got, archived{rec: rec, rows: append([]crawler.CommentRow(nil), rows...)})
		return nil
	}
	return c, &got
}

const testPostURL = "https://bj.afreecatv.com/243000/post/129323759"

func TestCrawlerRunWithoutCutoff(t *testing.T) {
	api := &fakeAPI{pages: [][]map[string]any{commentItems(1, 20), commentItems(21, 5)}, lastPage: 2}
	srv := newFakeAPI(t, api)
	prov := sheet.NewMemoryProvider()
	c, arch := newTestCrawler(t, srv.URL, prov)

	res, err := c.Run(context.Background(), crawler.RunRequest{PostURL: testPostURL, SheetName: "Chuny_land"})
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if res.Fetched != 25 || res.Appended != 25 || res.Pages != 2 || res.RunID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Favorites != nil {
		t.Fatalf("favorites should be empty without cutoff: %v", res.Favorites)
	}

	sh := prov.Sheet("Chuny_land")
	if sh == nil || len(sh.Rows) != 27 {
		t.Fatalf("sheet rows: %+v", sh)
	}
	if got := sh.Cell(1, 1); got != "2024.03.01 12시 30분 기준" {
		t.Fatalf("title = %q", got)
	}
	if got := sh.Cell(27, 1); got != "25" {
		t.Fatalf("last rank = %q", got)
	}
	if n := api.hitCount("station:user1"); n != 0 {
		t.Fatalf("station api called without cutoff")
	}

	if len(*arch) != 1 {
		t.Fatalf("archive calls = %d", len(*arch))
	}
	rec := (*arch)[0].rec
	if rec.Status != store.RunStatusOK || rec.RunID != res.RunID || rec.Appended != 25 {
		t.Fatalf("unexpected archive record: %+v", rec)
	}
	clock := time.Date(2024, 3, 1, 3, 30, 0, 0, time.UTC).Unix()
	if rec.StartedAt != clock || rec.FinishedAt != clock || res.FinishedAt != clock {
		t.Fatalf("timestamps started=%d finished=%d result=%d, want %d", rec.StartedAt, rec.FinishedAt, res.FinishedAt, clock)
	}
}

func TestCrawlerRunWithCutoff(t *testing.T) {
	api := &fakeAPI{
		pages:    [][]map[string]any{commentItems(1, 3)},
		lastPage: 1,
		fans:     map[string]int{"user1": 1000, "user2": 999},
	}
	srv := newFakeAPI(t, api)
	prov := sheet.NewMemoryProvider()
	c, arch := newTestCrawler(t, srv.URL, prov)

	res, err := c.Run(context.Background(), crawler.RunRequest{PostURL: testPostURL, SheetName: "s", ShareEmail: "me@example.com", FavoriteCutoff: 1000})
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	sh := prov.Sheet("s")
	if got := sh.Cell(2, 5); got != "애청자 1000명 이상" {
		t.Fatalf("header = %q", got)
	}
	want := []string{"O", "X", "확인불가"}
	for i, w := range want {
		if got := sh.Cell(i+3, 5); got != w {
			t.Fatalf("row %d favorite = %q, want %q", i+1, got, w)
		}
		if got := sh.Cell(i+3, 6); got == "" {
			t.Fatalf("row %d comment missing", i+1)
		}
	}
	if len(sh.Shares) != 1 || sh.Shares[0].Email != "me@example.com" {
		t.Fatalf("shares = %+v", sh.Shares)
	}
	if res.Favorites[string(crawler.FavoriteMet)] != 1 || res.Favorites[string(crawler.FavoriteUnknown)] != 1 {
		t.Fatalf("favorites = %v", res.Favorites)
	}
	if (*arch)[0].rows[0].Favorite != crawler.FavoriteMet {
		t.Fatalf("archived rows are not enriched: %+v", (*arch)[0].rows[0])
	}
}

func TestCrawlerRunFetchFailureLeavesSheetUntouched(t *testing.T) {
	api := &fakeAPI{pages: [][]map[string]any{commentItems(1, 20)}, lastPage: 2, failPage: 1}
	srv := newFakeAPI(t, api)
	prov := sheet.NewMemoryProvider()
	c, arch := newTestCrawler(t, srv.URL, prov)
	opened := false
	c.provider = func(ctx context.Context) (sheet.Provider, error) {
		opened = true
		return prov, nil
	}

	_, err := c.Run(context.Background(), crawler.RunRequest{PostURL: testPostURL, SheetName: "s"})
	if crawler.KindOf(err) != crawler.ErrorKindTransport {
		t.Fatalf("err = %v, want transport", err)
	}
	if opened || prov.Sheet("s") != nil {
		t.Fatalf("sheet backend touched after fetch failure")
	}
	if len(*arch) != 0 {
		t.Fatalf("fetch failure should not be archived")
	}
}

func TestCrawlerRunMaintenancePageLeavesSheetUntouched(t *testing.T) {
	api := &fakeAPI{lastPage: 1, contentType: "text/html", rawBody: "<html>maintenance</html>"}
	srv := newFakeAPI(t, api)
	prov := sheet.NewMemoryProvider()
	c, arch := newTestCrawler(t, srv.URL, prov)

	res, err := c.Run(context.Background(), crawler.RunRequest{PostURL: testPostURL, SheetName: "s"})
	if crawler.KindOf(err) != crawler.ErrorKindTransport {
		t.Fatalf("err = %v, want transport", err)
	}
	if res.FinishedAt != c.now().Unix() {
		t.Fatalf("FinishedAt = %d, want injected clock", res.FinishedAt)
	}
	if prov.Sheet("s") != nil || len(*arch) != 0 {
		t.Fatalf("sheet or archive touched after undecodable page")
	}
}

func TestCrawlerRunPublishFailureIsArchived(t *testing.T) {
	api := &fakeAPI{pages: [][]map[string]any{commentItems(1, 2)}, lastPage: 1}
	srv := newFakeAPI(t, api)
	prov := sheet.NewMemoryProvider()
	prov.OpenErr = errors.New("spreadsheet quota exceeded")
	c, arch := newTestCrawler(t, srv.URL, prov)

	res, err := c.Run(context.Background(), crawler.RunRequest{PostURL: testPostURL, SheetName: "s"})
	if crawler.KindOf(err) != crawler.ErrorKindSheetOpen {
		t.Fatalf("err = %v, want sheet_open", err)
	}
	if res.Fetched != 2 || res.Appended != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(*arch) != 1 || (*arch)[0].rec.Status != store.RunStatusFailed || (*arch)[0].rec.Error == "" {
		t.Fatalf("unexpected archive: %+v", *arch)
	}
}

func TestCrawlerRunRejectsBadInput(t *testing.T) {
	c, _ := newTestCrawler(t, "http://127.0.0.1:1", sheet.NewMemoryProvider())
	for _, req := range []crawler.RunRequest{
		{SheetName: "s"},
		{PostURL: testPostURL},
		{PostURL: "https://bj.afreecatv.com/243000", SheetName: "s"},
		{PostURL: testPostURL, SheetName: "s", FavoriteCutoff: -1},
	} {
		if _, err := c.Run(context.Background(), req); !crawler.IsConfigError(err) {
			t.Fatalf("Run(%+v) err = %v, want config error", req, err)
		}
	}
}
