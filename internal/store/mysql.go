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

	_ "github.com/go-sql-driver/mysql"
)

var (
	mysqlOnce sync.Once
	mysqlInst *sql.DB
	mysqlErr  error
)

func mysqlDSN() string {
	return strings.TrimSpace(config.AppConfig.MySQLDSN)
}

func mysqlDB() (*sql.DB, error) {
	if backendKind() != backendMySQL {
		return nil, errors.New("mysql backend disabled")
	}
	mysqlOnce.Do(func() {
		dsn := mysqlDSN()
		if dsn == "" {
			mysqlErr = errors.New("MYSQL_DSN is empty")
			return
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			mysqlErr = err
			return
		}
		setDBPoolDefaults(db, 8)
		db.SetConnMaxIdleTime(2 * time.Minute)

		if err := initMySQLSchema(db); err != nil {
			_ = db.Close()
			mysqlErr = err
			return
		}
		mysqlInst = db
	})
	return mysqlInst, mysqlErr
}

func initMySQLSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(64) NOT NULL,
			platform VARCHAR(32) NOT NULL,
			post_url VARCHAR(512) NOT NULL,
			sheet_name VARCHAR(191) NOT NULL,
			status VARCHAR(16) NOT NULL,
			data_json LONGTEXT NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (run_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id VARCHAR(64) NOT NULL,
			rank_no INT NOT NULL,
			user_id VARCHAR(191) NOT NULL,
			like_count INT NOT NULL,
			data_json LONGTEXT NOT NULL,
			PRIMARY KEY (run_id, rank_no),
			KEY idx_run_rows_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("mysql init schema: %w", err)
		}
	}
	return nil
}

func mysqlSaveRun(ctx context.Context, rec RunRecord, rows []crawler.CommentRow) error {
	db, err := mysqlDB()
	if err != nil {
		return err
	}
	return saveRunTx(ctx, db, backendMySQL,
		`INSERT INTO runs(run_id, platform, post_url, sheet_name, status, data_json, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE status=VALUES(status), data_json=VALUES(data_json), updated_at=VALUES(updated_at);`,
		rec, rows)
}
