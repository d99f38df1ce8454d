package afreeca

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const platformName = "afreeca"

// Client talks to the public board API (comments) and the station API
// (fan counts). Both reject requests without a browser User-Agent.
type Client struct {
	boardClient   *resty.Client
	stationClient *resty.Client
}

func NewClient(cfg config.Config) *Client {
	timeoutSec := cfg.HttpTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	hc := &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}

	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = "https://bjapi.afreecatv.com"
	}
	stationBase := cfg.StationAPIBaseURL
	if stationBase == "" {
		stationBase = "https://st.afreecatv.com"
	}

	return &Client{
		boardClient:   newRestyClient(hc, apiBase, cfg),
		stationClient: newRestyClient(hc, stationBase, cfg),
	}
}

func newRestyClient(hc *http.Client, baseURL string, cfg config.Config) *resty.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	rc := resty.NewWithClient(hc)
	rc.SetBaseURL(baseURL)
	rc.SetHeaders(map[string]string{
		"accept":          "application/json, text/plain, */*",
		"accept-language": "ko-KR,ko;q=0.9",
		"user-agent":      ua,
	})

	if cfg.HttpRetryCount <= 0 {
		return rc
	}
	baseMs := cfg.HttpRetryBaseDelayMs
	if baseMs <= 0 {
		baseMs = 500
	}
	maxMs := cfg.HttpRetryMaxDelayMs
	if maxMs <= 0 {
		maxMs = 4000
	}
	rc.SetRetryCount(cfg.HttpRetryCount)
	rc.SetRetryWaitTime(time.Duration(baseMs) * time.Millisecond)
	rc.SetRetryMaxWaitTime(time.Duration(maxMs) * time.Millisecond)
	rc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return crawler.ShouldRetryError(err)
		}
		if r == nil {
			return true
		}
		return crawler.ShouldRetryStatus(r.StatusCode())
	})
	return rc
}
