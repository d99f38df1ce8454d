package api

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
	"comment-ranker/internal/settings"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type Server struct {
	manager      *TaskManager
	mux          *http.ServeMux
	settingsPath string
}

func NewServer(manager *TaskManager) *Server {
	if manager == nil {
		manager = NewTaskManager()
	}
	s := &Server{
		manager:      manager,
		mux:          http.NewServeMux(),
		settingsPath: config.AppConfig.SettingsFile,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("POST /run", s.handleRun)
	s.mux.HandleFunc("GET /settings", s.handleSettings)
	s.mux.HandleFunc("GET /config/options", s.handleConfigOptions)
	s.mux.HandleFunc("GET /logs", s.handleLogs)
	s.mux.HandleFunc("GET /ws/logs", s.handleWSLogs)
	s.mux.HandleFunc("GET /ws/status", s.handleWSStatus)
	s.mux.Handle("GET /assets/", http.StripPrefix("/assets/", s.webUIAssetsHandler()))
	s.mux.HandleFunc("GET /", s.handleWebUIIndex)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Status())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req crawler.RunRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	if err := s.manager.Run(req); err != nil {
		if errors.Is(err, ErrTaskRunning) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
			return
		}
		if crawler.IsConfigError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "error_kind": crawler.KindOf(err)})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, s.manager.Status())
}

// handleSettings returns the form prefill: the saved settings file, falling
// back to the configured defaults field by field.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	saved, err := settings.Load(s.settingsPath)
	if err != nil {
		logger.Warn("load settings failed", "path", s.settingsPath, "err", err)
	}
	writeJSON(w, http.StatusOK, settings.Merge(saved, crawler.RequestFromConfig(config.AppConfig)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
