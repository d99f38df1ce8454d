package sheet

import (
	"context"
	"fmt"
	"time"

	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
)

// Enricher fills in the favorite status of one row. It must not fail; a lookup
// problem is reported as crawler.FavoriteUnknown.
type Enricher interface {
	Enrich(ctx context.Context, row crawler.CommentRow, cutoff int) crawler.CommentRow
}

type Options struct {
	// AppendInterval is waited before every row append.
	AppendInterval time.Duration
	// BatchAppend writes all rows in one call when the backend supports it.
	BatchAppend bool
	RowCeiling  int
}

type Meta struct {
	Timestamp      string
	SheetName      string
	ShareEmail     string
	FavoriteCutoff int
}

type Report struct {
	Created  bool
	Total    int
	Appended int
	// Rows holds the rows that were written, enriched when a cutoff was set.
	Rows []crawler.CommentRow
}

type Publisher struct {
	provider Provider
	enricher Enricher
	opts     Options
	sleep    func(context.Context, time.Duration) error
}

func NewPublisher(provider Provider, enricher Enricher, opts Options) *Publisher {
	if opts.RowCeiling <= 0 {
		opts.RowCeiling = 999
	}
	return &Publisher{provider: provider, enricher: enricher, opts: opts, sleep: crawler.Sleep}
}

// Publish clears the target sheet and rewrites it from rows. Steps run in a
// fixed order with no rollback; on error the report says how far it got.
func (p *Publisher) Publish(ctx context.Context, rows []crawler.CommentRow, meta Meta) (Report, error) {
	rep := Report{Total: len(rows)}

	sh, created, err := p.open(ctx, meta)
	if err != nil {
		return rep, err
	}
	rep.Created = created
	defer func() {
		if cErr := sh.Close(); cErr != nil {
			logger.Warn("sheet close failed", "sheet", meta.SheetName, "err", cErr)
		}
	}()

	if err := p.writeHeader(ctx, sh, meta); err != nil {
		return rep, transportErr(meta.SheetName, err)
	}

	enriched := meta.FavoriteCutoff > 0 && p.enricher != nil
	if ra, ok := sh.(RowsAppender); ok && p.opts.BatchAppend {
		err = p.appendBatch(ctx, ra, rows, meta, enriched, &rep)
	} else {
		err = p.appendEach(ctx, sh, rows, meta, enriched, &rep)
	}
	if err != nil {
		return rep, err
	}

	width := len(HeaderRow(meta.FavoriteCutoff))
	if err := sh.Format(ctx, BodyRange(width, p.opts.RowCeiling).A1(), bodyFormat); err != nil {
		return rep, transportErr(meta.SheetName, fmt.Errorf("format body: %w", err))
	}
	logger.Info("sheet published", "sheet", meta.SheetName, "rows", rep.Appended, "created", rep.Created)
	return rep, nil
}

func (p *Publisher) open(ctx context.Context, meta Meta) (Sheet, bool, error) {
	sh, found, err := p.provider.Open(ctx, meta.SheetName)
	if err != nil {
		return nil, false, crawler.NewSheetOpenError(meta.SheetName, err)
	}
	if found {
		return sh, false, nil
	}

	logger.Info("sheet not found, creating", "sheet", meta.SheetName)
	sh, err = p.provider.Create(ctx, meta.SheetName)
	if err != nil {
		return nil, false, crawler.NewSheetOpenError(meta.SheetName, err)
	}
	if meta.ShareEmail != "" {
		if err := sh.Share(ctx, meta.ShareEmail, "writer"); err != nil {
			_ = sh.Close()
			return nil, false, crawler.NewSheetOpenError(meta.SheetName, fmt.Errorf("share with %s: %w", meta.ShareEmail, err))
		}
		logger.Info("sheet shared", "sheet", meta.SheetName, "email", meta.ShareEmail)
	}
	return sh, true, nil
}

func (p *Publisher) writeHeader(ctx context.Context, sh Sheet, meta Meta) error {
	if err := sh.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := sh.AppendRow(ctx, TitleRow(meta.Timestamp)); err != nil {
		return fmt.Errorf("title row: %w", err)
	}
	if err := sh.MergeCells(ctx, titleMerge); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	for _, cf := range []struct {
		cell string
		f    CellFormat
	}{
		{titleCell, titleFormat},
		{summaryLabelCell, labelFormat},
		{summaryValueCell, valueFormat},
	} {
		if err := sh.Format(ctx, cf.cell, cf.f); err != nil {
			return fmt.Errorf("format %s: %w", cf.cell, err)
		}
	}
	if err := sh.AppendRow(ctx, toValues(HeaderRow(meta.FavoriteCutoff))); err != nil {
		return fmt.Errorf("header row: %w", err)
	}
	if err := sh.UpdateCell(ctx, summaryValueCell, countFormula); err != nil {
		return fmt.Errorf("count formula: %w", err)
	}
	return nil
}

func (p *Publisher) appendEach(ctx context.Context, sh Sheet, rows []crawler.CommentRow, meta Meta, enriched bool, rep *Report) error {
	for i, row := range rows {
		if err := p.sleep(ctx, p.opts.AppendInterval); err != nil {
			return err
		}
		if enriched {
			row = p.enricher.Enrich(ctx, row, meta.FavoriteCutoff)
		}
		if err := sh.AppendRow(ctx, DataRow(row, enriched)); err != nil {
			return transportErr(meta.SheetName, fmt.Errorf("append rank %d: %w", row.Rank, err))
		}
		rep.Appended++
		rep.Rows = append(rep.Rows, row)
		logger.Progress("sheet data loading", i+1, len(rows), "sheet", meta.SheetName)
	}
	return nil
}

func (p *Publisher) appendBatch(ctx context.Context, ra RowsAppender, rows []crawler.CommentRow, meta Meta, enriched bool, rep *Report) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]any, 0, len(rows))
	done := make([]crawler.CommentRow, 0, len(rows))
	for i, row := range rows {
		if enriched {
			row = p.enricher.Enrich(ctx, row, meta.FavoriteCutoff)
			logger.Progress("favorite check", i+1, len(rows), "sheet", meta.SheetName)
		}
		values = append(values, DataRow(row, enriched))
		done = append(done, row)
	}
	if err := p.sleep(ctx, p.opts.AppendInterval); err != nil {
		return err
	}
	if err := ra.AppendRows(ctx, values); err != nil {
		return transportErr(meta.SheetName, fmt.Errorf("append %d rows: %w", len(values), err))
	}
	rep.Appended = len(done)
	rep.Rows = done
	logger.Progress("sheet data loading", len(done), len(rows), "sheet", meta.SheetName, "batch", true)
	return nil
}

func transportErr(sheetName string, err error) error {
	switch crawler.KindOf(err) {
	case crawler.ErrorKindTransport, crawler.ErrorKindCanceled, crawler.ErrorKindTimeout:
		return err
	}
	return crawler.NewTransportError("sheet", sheetName, err)
}
