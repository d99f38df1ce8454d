package store

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type sqlBackendKind string

const (
	backendNone     sqlBackendKind = "none"
	backendFile     sqlBackendKind = "file"
	backendSQLite   sqlBackendKind = "sqlite"
	backendMySQL    sqlBackendKind = "mysql"
	backendPostgres sqlBackendKind = "postgres"
	backendMongoDB  sqlBackendKind = "mongodb"
)

func backendKind() sqlBackendKind {
	v := strings.ToLower(strings.TrimSpace(config.AppConfig.StoreBackend))
	switch v {
	case "none", "off", "disabled":
		return backendNone
	case "sqlite":
		return backendSQLite
	case "mysql":
		return backendMySQL
	case "postgres", "postgresql":
		return backendPostgres
	case "mongodb", "mongo":
		return backendMongoDB
	default:
		return backendFile
	}
}

func placeholder(k sqlBackendKind, idx int) string {
	if k == backendPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

func placeholders(k sqlBackendKind, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(k, i+1)
	}
	return strings.Join(parts, ", ")
}

func setDBPoolDefaults(db *sql.DB, maxOpen int) {
	if db == nil {
		return
	}
	if maxOpen <= 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(0)
}

// saveRunTx writes the run in one transaction. upsertRun must replace an
// existing row with the same run_id; earlier rows of the run are deleted first.
func saveRunTx(ctx context.Context, db *sql.DB, k sqlBackendKind, upsertRun string, rec RunRecord, rows []crawler.CommentRow) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	now := time.Now().Unix()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsertRun,
		rec.RunID, rec.Platform, rec.PostURL, rec.SheetName, rec.Status, string(b), now,
	); err != nil {
		return fmt.Errorf("upsert run %s: %w", rec.RunID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_rows WHERE run_id = `+placeholder(k, 1), rec.RunID); err != nil {
		return err
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_rows(run_id, rank_no, user_id, like_count, data_json) VALUES(`+placeholders(k, 5)+`)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			rb, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("marshal row %d: %w", row.Rank, err)
			}
			if _, err := stmt.ExecContext(ctx, rec.RunID, row.Rank, row.UserID, row.LikeCount, string(rb)); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
