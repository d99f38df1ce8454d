package store

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	sqliteOnce sync.Once
	sqliteInst *sql.DB
	sqliteErr  error
)

func sqlitePath() string {
	p := strings.TrimSpace(config.AppConfig.SQLitePath)
	if p == "" {
		p = "data/comment_ranker.db"
	}
	return p
}

func sqliteDB() (*sql.DB, error) {
	if backendKind() != backendSQLite {
		return nil, errors.New("sqlite backend disabled")
	}
	sqliteOnce.Do(func() {
		p := sqlitePath()
		if dir := filepath.Dir(p); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0755)
		}
		db, err := sql.Open("sqlite", p)
		if err != nil {
			sqliteErr = err
			return
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			sqliteErr = err
			return
		}
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			sqliteErr = err
			return
		}

		stmts := []string{
			`CREATE TABLE IF NOT EXISTS runs (
				run_id TEXT NOT NULL PRIMARY KEY,
				platform TEXT NOT NULL,
				post_url TEXT NOT NULL,
				sheet_name TEXT NOT NULL,
				status TEXT NOT NULL,
				data_json TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS run_rows (
				run_id TEXT NOT NULL,
				rank_no INTEGER NOT NULL,
				user_id TEXT NOT NULL,
				like_count INTEGER NOT NULL,
				data_json TEXT NOT NULL,
				PRIMARY KEY (run_id, rank_no)
			);`,
			`CREATE INDEX IF NOT EXISTS idx_run_rows_user ON run_rows(user_id);`,
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				_ = db.Close()
				sqliteErr = err
				return
			}
		}
		sqliteInst = db
	})
	return sqliteInst, sqliteErr
}

func sqliteSaveRun(ctx context.Context, rec RunRecord, rows []crawler.CommentRow) error {
	db, err := sqliteDB()
	if err != nil {
		return err
	}
	return saveRunTx(ctx, db, backendSQLite,
		`INSERT INTO runs(run_id, platform, post_url, sheet_name, status, data_json, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id)
		 DO UPDATE SET status=excluded.status, data_json=excluded.data_json, updated_at=excluded.updated_at;`,
		rec, rows)
}
