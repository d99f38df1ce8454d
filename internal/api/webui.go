package api

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed webui/*
var webuiFS embed.FS

func webuiRoot() (fs.FS, error) {
	return fs.Sub(webuiFS, "webui")
}

// handleWebUIIndex serves the run form. Unknown paths under / are 404s, not
// the form.
func (s *Server) handleWebUIIndex(w http.ResponseWriter, r *http.Request) {
	if p := strings.TrimSpace(r.URL.Path); p != "" && p != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	root, err := webuiRoot()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	b, err := fs.ReadFile(root, "index.html")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) webUIAssetsHandler() http.Handler {
	root, err := webuiRoot()
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		})
	}
	return http.FileServer(http.FS(root))
}
