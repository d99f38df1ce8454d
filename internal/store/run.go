package store

import (
	"comment-ranker/internal/crawler"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// RunRecord summarizes one run. It is written once, after publishing finished
// or failed; Status and Error say which.
type RunRecord struct {
	RunID          string `json:"run_id"`
	Platform       string `json:"platform"`
	PostURL        string `json:"post_url"`
	SheetName      string `json:"sheet_name"`
	FavoriteCutoff int    `json:"favorite_cutoff"`
	Timestamp      string `json:"timestamp"`
	StartedAt      int64  `json:"started_at"`
	FinishedAt     int64  `json:"finished_at"`
	Fetched        int    `json:"fetched"`
	Appended       int    `json:"appended"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
}

func (r RunRecord) CSVHeader() []string {
	return []string{"run_id", "platform", "post_url", "sheet_name", "favorite_cutoff", "timestamp", "started_at", "finished_at", "fetched", "appended", "status", "error"}
}

func (r RunRecord) ToCSV() []string {
	return []string{
		r.RunID, r.Platform, r.PostURL, r.SheetName,
		strconv.Itoa(r.FavoriteCutoff), r.Timestamp,
		strconv.FormatInt(r.StartedAt, 10), strconv.FormatInt(r.FinishedAt, 10),
		strconv.Itoa(r.Fetched), strconv.Itoa(r.Appended),
		r.Status, r.Error,
	}
}

// RunRow is one archived comment row, keyed by run and rank.
type RunRow struct {
	RunID string `json:"run_id"`
	crawler.CommentRow
}

func (r RunRow) CSVHeader() []string {
	return []string{"run_id", "rank", "nickname", "user_id", "comment_no", "permalink", "like_count", "favorite", "comment"}
}

func (r RunRow) ToCSV() []string {
	return []string{
		r.RunID,
		strconv.Itoa(r.Rank),
		r.Nickname,
		r.UserID,
		strconv.FormatInt(r.CommentNo, 10),
		r.Permalink,
		strconv.Itoa(r.LikeCount),
		string(r.Favorite),
		r.Comment,
	}
}

type runArchive struct {
	Run  RunRecord            `json:"run"`
	Rows []crawler.CommentRow `json:"rows"`
}

// SaveRun archives a run and its rows in the configured backend. The file
// backend appends to daily files; SQL and Mongo backends replace any earlier
// rows of the same run.
func SaveRun(ctx context.Context, rec RunRecord, rows []crawler.CommentRow) error {
	rec.RunID = strings.TrimSpace(rec.RunID)
	if rec.RunID == "" {
		return errors.New("run_id is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	switch backendKind() {
	case backendNone:
		return nil
	case backendFile:
		return saveRunFiles(rec, rows)
	default:
		return sqlSaveRun(ctx, rec, rows)
	}
}

func saveRunFiles(rec RunRecord, rows []crawler.CommentRow) error {
	s := GetStore()
	date := time.Now().Format("2006-01-02")
	ext := fileExt()
	if ext == "json" {
		return s.Save(runArchive{Run: rec, Rows: rows}, fmt.Sprintf("runs_%s.%s", date, ext))
	}
	if err := s.Save(rec, fmt.Sprintf("runs_%s.%s", date, ext)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := s.Save(RunRow{RunID: rec.RunID, CommentRow: row}, fmt.Sprintf("run_rows_%s.%s", date, ext)); err != nil {
			return err
		}
	}
	return nil
}
