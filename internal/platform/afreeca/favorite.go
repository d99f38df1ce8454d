package afreeca

import (
	"comment-ranker/internal/cache"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FanCountUnknown is returned when the station lookup cannot resolve the account.
const FanCountUnknown = -1

const stationStatusPath = "/api/get_station_status.php"

type stationStatusResp struct {
	Result flexInt `json:"RESULT"`
	Data   struct {
		FanCnt flexInt `json:"fan_cnt"`
	} `json:"DATA"`
}

// GetFanCount returns the account's favorite count, or FanCountUnknown when the
// station API answers RESULT=0.
func (c *Client) GetFanCount(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return FanCountUnknown, nil
	}
	r, err := c.stationClient.R().
		SetContext(ctx).
		SetQueryParam("szBjId", userID).
		Get(stationStatusPath)
	if err != nil {
		return FanCountUnknown, crawler.NewTransportError(platformName, stationStatusPath, err)
	}
	if !r.IsSuccess() {
		return FanCountUnknown, crawler.NewHTTPStatusError(platformName, stationStatusPath, r.StatusCode(), r.String())
	}
	var out stationStatusResp
	if err := json.Unmarshal(r.Body(), &out); err != nil {
		return FanCountUnknown, fmt.Errorf("decode station status for %s: %w", userID, err)
	}
	if out.Result == 0 {
		return FanCountUnknown, nil
	}
	return int(out.Data.FanCnt), nil
}

// Classify maps a fan count against the cutoff. Counts below zero are the
// not-found sentinel.
func Classify(fanCount int, cutoff int) crawler.FavoriteStatus {
	switch {
	case fanCount < 0:
		return crawler.FavoriteUnknown
	case fanCount >= cutoff:
		return crawler.FavoriteMet
	default:
		return crawler.FavoriteNotMet
	}
}

type fanCountClient interface {
	GetFanCount(ctx context.Context, userID string) (int, error)
}

// FavoriteChecker annotates rows with their favorite status. Lookups are best
// effort: any failure yields FavoriteUnknown and the run continues.
type FavoriteChecker struct {
	client fanCountClient
	cache  cache.Cache
	ttl    time.Duration
}

func NewFavoriteChecker(client fanCountClient, c cache.Cache, ttl time.Duration) *FavoriteChecker {
	return &FavoriteChecker{client: client, cache: c, ttl: ttl}
}

func (f *FavoriteChecker) Enrich(ctx context.Context, row crawler.CommentRow, cutoff int) crawler.CommentRow {
	row.Favorite = Classify(f.fanCount(ctx, row.UserID), cutoff)
	return row
}

func (f *FavoriteChecker) fanCount(ctx context.Context, userID string) int {
	key := "fan_cnt:" + userID
	if f.cache != nil && userID != "" {
		if b, ok, err := f.cache.Get(ctx, key); err == nil && ok {
			if n, err := strconv.Atoi(string(b)); err == nil {
				return n
			}
		}
	}

	n, err := f.client.GetFanCount(ctx, userID)
	if err != nil {
		logger.Warn("favorite lookup failed", "user_id", userID, "err", err, "error_kind", crawler.KindOf(err))
		return FanCountUnknown
	}
	if n < 0 {
		logger.Warn("favorite lookup: account not found", "user_id", userID)
		return FanCountUnknown
	}
	if f.cache != nil {
		if err := f.cache.Set(ctx, key, []byte(strconv.Itoa(n)), f.ttl); err != nil {
			logger.Debug("favorite cache set failed", "user_id", userID, "err", err)
		}
	}
	return n
}
