package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
)

const initTimeout = 20 * time.Second

// Init opens the configured run archive and checks that it is reachable. It
// returns the resolved backend name so callers can report where runs go.
func Init(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	kind := backendKind()
	var err error
	switch kind {
	case backendNone:
	case backendFile:
		err = os.MkdirAll(RunsDir(), 0755)
	case backendSQLite:
		err = pingSQL(ctx, sqliteDB)
	case backendMySQL:
		err = pingSQL(ctx, mysqlDB)
	case backendPostgres:
		err = pingSQL(ctx, postgresDB)
	case backendMongoDB:
		// mongoClient pings the primary and builds indexes on first use.
		_, err = mongoClient()
	}
	if err != nil {
		return string(kind), fmt.Errorf("init %s run archive: %w", kind, err)
	}
	return string(kind), nil
}

func pingSQL(ctx context.Context, open func() (*sql.DB, error)) error {
	db, err := open()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
