package store

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mongoOnce sync.Once
	mongoCli  *mongo.Client
	mongoErr  error
)

func mongoURI() string {
	return strings.TrimSpace(config.AppConfig.MongoURI)
}

func mongoDBName() string {
	v := strings.TrimSpace(config.AppConfig.MongoDB)
	if v == "" {
		return "comment_ranker"
	}
	return v
}

func mongoClient() (*mongo.Client, error) {
	if backendKind() != backendMongoDB {
		return nil, errors.New("mongodb backend disabled")
	}
	mongoOnce.Do(func() {
		uri := mongoURI()
		if uri == "" {
			mongoErr = errors.New("MONGO_URI is empty")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			mongoErr = err
			return
		}
		if err := cli.Ping(ctx, readpref.Primary()); err != nil {
			_ = cli.Disconnect(ctx)
			mongoErr = err
			return
		}
		if err := initMongoSchema(ctx, cli); err != nil {
			_ = cli.Disconnect(ctx)
			mongoErr = err
			return
		}
		mongoCli = cli
	})
	return mongoCli, mongoErr
}

func initMongoSchema(ctx context.Context, cli *mongo.Client) error {
	db := cli.Database(mongoDBName())

	runs := db.Collection("runs")
	_, err := runs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_run"),
		},
		{
			Keys:    bson.D{{Key: "post_url", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_post_updated"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes runs: %w", err)
	}

	rows := db.Collection("run_rows")
	_, err = rows.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "rank", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_run_rank"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes run_rows: %w", err)
	}
	return nil
}

func mongoSaveRun(ctx context.Context, rec RunRecord, rows []crawler.CommentRow) error {
	cli, err := mongoClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	now := time.Now()
	db := cli.Database(mongoDBName())
	filter := bson.D{{Key: "run_id", Value: rec.RunID}}
	update := bson.D{{Key: "$set", Value: bson.M{
		"run_id":          rec.RunID,
		"platform":        rec.Platform,
		"post_url":        rec.PostURL,
		"sheet_name":      rec.SheetName,
		"favorite_cutoff": rec.FavoriteCutoff,
		"timestamp":       rec.Timestamp,
		"started_at":      rec.StartedAt,
		"finished_at":     rec.FinishedAt,
		"fetched":         rec.Fetched,
		"appended":        rec.Appended,
		"status":          rec.Status,
		"error":           rec.Error,
		"updated_at":      now.Unix(),
		"updated_iso":     now.UTC().Format(time.RFC3339Nano),
	}}}
	if _, err := db.Collection("runs").UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return err
	}

	coll := db.Collection("run_rows")
	if _, err := coll.DeleteMany(ctx, filter); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, mongo.NewInsertOneModel().SetDocument(bson.M{
			"run_id":     rec.RunID,
			"rank":       row.Rank,
			"nickname":   row.Nickname,
			"user_id":    row.UserID,
			"comment_no": row.CommentNo,
			"permalink":  row.Permalink,
			"like_count": row.LikeCount,
			"comment":    row.Comment,
			"favorite":   string(row.Favorite),
		}))
	}
	_, err = coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}
