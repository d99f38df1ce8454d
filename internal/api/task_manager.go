package api

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
	"comment-ranker/internal/platform"
	"comment-ranker/internal/platform/afreeca"
	"comment-ranker/internal/settings"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

var ErrTaskRunning = errors.New("task is running")

const (
	StateIdle    = "idle"
	StateRunning = "running"
)

type Status struct {
	State      string         `json:"state"`
	RunID      string         `json:"run_id,omitempty"`
	PostURL    string         `json:"post_url,omitempty"`
	SheetName  string         `json:"sheet_name,omitempty"`
	StartedAt  int64          `json:"started_at,omitempty"`
	FinishedAt int64          `json:"finished_at,omitempty"`
	Fetched    int            `json:"fetched,omitempty"`
	Appended   int            `json:"appended,omitempty"`
	Favorites  map[string]int `json:"favorites,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty"`
}

type RunFunc func(ctx context.Context, req crawler.RunRequest) (crawler.Result, error)

// TaskManager runs at most one job at a time. The state always returns to
// idle when a run ends, whether it succeeded, failed or panicked.
type TaskManager struct {
	mu           sync.Mutex
	running      bool
	status       Status
	runFn        RunFunc
	settingsPath string
}

func NewTaskManager() *TaskManager {
	return NewTaskManagerWithRunner(runCrawler)
}

func NewTaskManagerWithRunner(runFn RunFunc) *TaskManager {
	if runFn == nil {
		runFn = runCrawler
	}
	return &TaskManager{
		status:       Status{State: StateIdle},
		runFn:        runFn,
		settingsPath: config.AppConfig.SettingsFile,
	}
}

func (m *TaskManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status
	if st.Favorites != nil {
		fav := make(map[string]int, len(st.Favorites))
		for k, v := range st.Favorites {
			fav[k] = v
		}
		st.Favorites = fav
	}
	return st
}

// Run validates req, saves it as the next prefill and starts the job in the
// background. Validation errors are returned before anything is started.
func (m *TaskManager) Run(req crawler.RunRequest) error {
	req = normalizeRequest(req)
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := afreeca.ParsePostURL(req.PostURL); err != nil {
		return err
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrTaskRunning
	}
	m.running = true
	m.status = Status{
		State:     StateRunning,
		PostURL:   req.PostURL,
		SheetName: req.SheetName,
		StartedAt: time.Now().Unix(),
	}
	m.mu.Unlock()

	if err := settings.Save(m.settingsPath, req); err != nil {
		logger.Warn("save settings failed", "path", m.settingsPath, "err", err)
	}

	go m.execute(req)
	return nil
}

func (m *TaskManager) execute(req crawler.RunRequest) {
	var (
		res crawler.Result
		err error
	)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("run panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			err = fmt.Errorf("run panicked: %v", p)
		}
		m.finish(res, err)
	}()
	res, err = m.runFn(context.Background(), req)
}

func (m *TaskManager) finish(res crawler.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.status.State = StateIdle
	m.status.RunID = res.RunID
	m.status.Fetched = res.Fetched
	m.status.Appended = res.Appended
	m.status.Favorites = res.Favorites
	m.status.FinishedAt = time.Now().Unix()
	if err != nil {
		m.status.LastError = err.Error()
		m.status.ErrorKind = string(crawler.KindOf(err))
	} else {
		m.status.LastError = ""
		m.status.ErrorKind = ""
	}
}

func runCrawler(ctx context.Context, req crawler.RunRequest) (crawler.Result, error) {
	r, err := platform.New(config.AppConfig.Platform, config.AppConfig)
	if err != nil {
		return crawler.Result{}, err
	}
	return r.Run(ctx, req)
}

func normalizeRequest(req crawler.RunRequest) crawler.RunRequest {
	req.PostURL = strings.TrimSpace(req.PostURL)
	req.SheetName = strings.TrimSpace(req.SheetName)
	req.ShareEmail = strings.TrimSpace(req.ShareEmail)
	return req
}
