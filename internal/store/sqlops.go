package store

import (
	"comment-ranker/internal/crawler"
	"context"
)

func sqlSaveRun(ctx context.Context, rec RunRecord, rows []crawler.CommentRow) error {
	switch backendKind() {
	case backendSQLite:
		return sqliteSaveRun(ctx, rec, rows)
	case backendMySQL:
		return mysqlSaveRun(ctx, rec, rows)
	case backendPostgres:
		return postgresSaveRun(ctx, rec, rows)
	case backendMongoDB:
		return mongoSaveRun(ctx, rec, rows)
	default:
		return nil
	}
}
