package afreeca

import (
	"comment-ranker/internal/cache"
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
	"comment-ranker/internal/sheet"
	"comment-ranker/internal/store"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ProviderFunc opens the sheet backend. It is called after the comments are
// fetched, so a fetch failure never touches the spreadsheet.
type ProviderFunc func(ctx context.Context) (sheet.Provider, error)

type ArchiveFunc func(ctx context.Context, rec store.RunRecord, rows []crawler.CommentRow) error

// Crawler runs one post end to end: fetch, rank, publish, archive.
type Crawler struct {
	client   commentClient
	provider ProviderFunc
	enricher sheet.Enricher
	opts     sheet.Options
	timezone string
	archive  ArchiveFunc
	now      func() time.Time
}

func NewCrawler(cfg config.Config, provider ProviderFunc, c cache.Cache) *Crawler {
	client := NewClient(cfg)
	ttl := time.Duration(cfg.FavoriteCacheTTLSec) * time.Second
	return &Crawler{
		client:   client,
		provider: provider,
		enricher: NewFavoriteChecker(client, c, ttl),
		opts:     sheet.OptionsFromConfig(cfg),
		timezone: cfg.Timezone,
		archive:  store.SaveRun,
		now:      time.Now,
	}
}

// NewCrawlerFromConfig wires the configured sheet backend, favorite cache and
// run archive.
func NewCrawlerFromConfig(cfg config.Config) *Crawler {
	provider := func(ctx context.Context) (sheet.Provider, error) {
		return sheet.NewProviderFromConfig(ctx, cfg)
	}
	return NewCrawler(cfg, provider, cache.NewFromConfig(cfg))
}

func (c *Crawler) Run(ctx context.Context, req crawler.RunRequest) (crawler.Result, error) {
	res := crawler.NewResult(platformName, req)
	res.RunID = uuid.NewString()
	res.StartedAt = c.now().Unix()

	if err := req.Validate(); err != nil {
		return res, err
	}
	post, err := ParsePostURL(req.PostURL)
	if err != nil {
		return res, err
	}
	logger.Info("run started", "run_id", res.RunID, "post", post.URL, "sheet", req.SheetName, "favorite_cutoff", req.FavoriteCutoff)

	rows, pages, err := fetchAllComments(ctx, c.client, post)
	res.Pages = pages
	if err != nil {
		res.FinishedAt = c.now().Unix()
		logger.Error("fetch comments failed", "run_id", res.RunID, "page", pages+1, "err", err, "error_kind", crawler.KindOf(err))
		return res, err
	}
	res.Fetched = len(rows)
	logger.Info("comments fetched", "run_id", res.RunID, "pages", pages, "rows", len(rows))

	ts := sheet.FormatTimestamp(c.now(), c.timezone)
	rep, err := c.publish(ctx, req, rows, ts)
	res.Appended = rep.Appended
	copy(rows, rep.Rows)
	if req.EnrichmentEnabled() {
		byStatus := lo.GroupBy(rep.Rows, func(r crawler.CommentRow) string { return string(r.Favorite) })
		res.Favorites = lo.MapValues(byStatus, func(group []crawler.CommentRow, _ string) int { return len(group) })
	}
	res.FinishedAt = c.now().Unix()

	rec := store.RunRecord{
		RunID:          res.RunID,
		Platform:       platformName,
		PostURL:        post.URL,
		SheetName:      req.SheetName,
		FavoriteCutoff: req.FavoriteCutoff,
		Timestamp:      ts,
		StartedAt:      res.StartedAt,
		FinishedAt:     res.FinishedAt,
		Fetched:        res.Fetched,
		Appended:       res.Appended,
		Status:         store.RunStatusOK,
	}
	if err != nil {
		rec.Status = store.RunStatusFailed
		rec.Error = err.Error()
	}
	if c.archive != nil {
		if aErr := c.archive(context.WithoutCancel(ctx), rec, rows); aErr != nil {
			logger.Warn("archive run failed", "run_id", res.RunID, "err", aErr)
		}
	}

	if err != nil {
		logger.Error("publish failed", "run_id", res.RunID, "appended", res.Appended, "total", res.Fetched, "err", err, "error_kind", crawler.KindOf(err))
		return res, err
	}
	logger.Info("run finished", "run_id", res.RunID, "rows", res.Appended, "favorites", res.Favorites)
	return res, nil
}

func (c *Crawler) publish(ctx context.Context, req crawler.RunRequest, rows []crawler.CommentRow, ts string) (sheet.Report, error) {
	provider, err := c.provider(ctx)
	if err != nil {
		return sheet.Report{Total: len(rows)}, crawler.NewSheetOpenError(req.SheetName, err)
	}
	pub := sheet.NewPublisher(provider, c.enricher, c.opts)
	return pub.Publish(ctx, rows, sheet.Meta{
		Timestamp:      ts,
		SheetName:      req.SheetName,
		ShareEmail:     req.ShareEmail,
		FavoriteCutoff: req.FavoriteCutoff,
	})
}
