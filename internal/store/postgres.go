package store

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	pgOnce sync.Once
	pgInst *sql.DB
	pgErr  error
)

func postgresDSN() string {
	return strings.TrimSpace(config.AppConfig.PostgresDSN)
}

func postgresDB() (*sql.DB, error) {
	if backendKind() != backendPostgres {
		return nil, errors.New("postgres backend disabled")
	}
	pgOnce.Do(func() {
		dsn := postgresDSN()
		if dsn == "" {
			pgErr = errors.New("POSTGRES_DSN is empty")
			return
		}
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			pgErr = err
			return
		}
		setDBPoolDefaults(db, 8)
		db.SetConnMaxIdleTime(2 * time.Minute)

		if err := initPostgresSchema(db); err != nil {
			_ = db.Close()
			pgErr = err
			return
		}
		pgInst = db
	})
	return pgInst, pgErr
}

func initPostgresSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT NOT NULL PRIMARY KEY,
			platform TEXT NOT NULL,
			post_url TEXT NOT NULL,
			sheet_name TEXT NOT NULL,
			status TEXT NOT NULL,
			data_json TEXT NOT NULL,
			updated_at BIGINT NOT NULL
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
			return fmt.Errorf("postgres init schema: %w", err)
		}
	}
	return nil
}

func postgresSaveRun(ctx context.Context, rec RunRecord, rows []crawler.CommentRow) error {
	db, err := postgresDB()
	if err != nil {
		return err
	}
	return saveRunTx(ctx, db, backendPostgres,
		`INSERT INTO runs(run_id, platform, post_url, sheet_name, status, data_json, updated_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id)
		 DO UPDATE SET status=EXCLUDED.status, data_json=EXCLUDED.data_json, updated_at=EXCLUDED.updated_at;`,
		rec, rows)
}
