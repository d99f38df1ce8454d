package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
)

func useFileBackend(t *testing.T, option string) string {
	t.Helper()
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })
	dir := t.TempDir()
	config.AppConfig.StoreBackend = "file"
	config.AppConfig.DataDir = dir
	config.AppConfig.SaveDataOption = option
	return filepath.Join(dir, "afreeca")
}

func TestSaveRunJSON(t *testing.T) {
	dir := useFileBackend(t, "json")
	rec := RunRecord{RunID: "r1", SheetName: "s", Status: RunStatusOK}
	rows := []crawler.CommentRow{{Rank: 1, Nickname: "a", Permalink: "https://x/#comment_noti1"}}

	for i := 0; i < 2; i++ {
		if err := SaveRun(context.Background(), rec, rows); err != nil {
			t.Fatalf("SaveRun err: %v", err)
		}
	}

	path := filepath.Join(dir, "runs_"+time.Now().Format("2006-01-02")+".json")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var got runArchive
		if err := json.Unmarshal(sc.Bytes(), &got); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		if got.Run.RunID != "r1" || len(got.Rows) != 1 || got.Rows[0].Permalink != rows[0].Permalink {
			t.Fatalf("unexpected archive: %+v", got)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestSaveRunCSV(t *testing.T) {
	dir := useFileBackend(t, "csv")
	rec := RunRecord{RunID: "r1", Status: RunStatusOK}
	rows := []crawler.CommentRow{
		{Rank: 1, Nickname: "a", Comment: "hello, world"},
		{Rank: 2, Nickname: "b", Favorite: crawler.FavoriteMet},
	}
	if err := SaveRun(context.Background(), rec, rows); err != nil {
		t.Fatalf("SaveRun err: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "run_rows_"+time.Now().Format("2006-01-02")+".csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	text := strings.TrimPrefix(string(b), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %q", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "run_id,rank,") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `"hello, world"`) {
		t.Fatalf("comment not quoted: %q", lines[1])
	}
	if !strings.Contains(lines[2], ",met,") {
		t.Fatalf("favorite missing: %q", lines[2])
	}
}

func TestSaveRunDisabled(t *testing.T) {
	dir := useFileBackend(t, "json")
	config.AppConfig.StoreBackend = "none"
	if err := SaveRun(context.Background(), RunRecord{RunID: "r1"}, nil); err != nil {
		t.Fatalf("SaveRun err: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected no files, stat err=%v", err)
	}
}

func TestInitFileBackendCreatesRunsDir(t *testing.T) {
	dir := useFileBackend(t, "json")

	backend, err := Init(context.Background())
	if err != nil {
		t.Fatalf("Init err: %v", err)
	}
	if backend != "file" {
		t.Fatalf("backend = %q, want file", backend)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Fatalf("runs dir missing: %v", err)
	}
}

func TestInitWrapsBackendErrors(t *testing.T) {
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })
	config.AppConfig.StoreBackend = "mongo"
	config.AppConfig.MongoURI = ""
	mongoOnce, mongoCli, mongoErr = sync.Once{}, nil, nil
	t.Cleanup(func() { mongoOnce, mongoCli, mongoErr = sync.Once{}, nil, nil })

	backend, err := Init(context.Background())
	if err == nil {
		t.Fatalf("expected error for empty MONGO_URI")
	}
	if backend != "mongodb" || !strings.Contains(err.Error(), "init mongodb run archive") {
		t.Fatalf("backend=%q err=%v", backend, err)
	}
}
