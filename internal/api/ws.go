package api

import (
	"comment-ranker/internal/logger"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/websocket"
)

func (s *Server) handleWSLogs(w http.ResponseWriter, r *http.Request) {
	websocket.Server{
		Handshake: func(cfg *websocket.Config, req *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			conn.PayloadType = websocket.TextFrame
			ch, cancel := logger.Subscribe()
			defer cancel()

			for msg := range ch {
				if err := websocket.Message.Send(conn, string(msg)); err != nil {
					return
				}
			}
		},
	}.ServeHTTP(w, r)
}

// handleWSStatus pushes the task status every interval_ms (100..5000, default
// 1000) until the client goes away.
func (s *Server) handleWSStatus(w http.ResponseWriter, r *http.Request) {
	interval := time.Second
	if v := strings.TrimSpace(r.URL.Query().Get("interval_ms")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			if n < 100 {
				n = 100
			}
			if n > 5000 {
				n = 5000
			}
			interval = time.Duration(n) * time.Millisecond
		}
	}

	websocket.Server{
		Handshake: func(cfg *websocket.Config, req *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			conn.PayloadType = websocket.TextFrame

			send := func() bool {
				b, err := json.Marshal(s.manager.Status())
				if err != nil {
					return false
				}
				b = append(b, '\n')
				return websocket.Message.Send(conn, string(b)) == nil
			}

			if !send() {
				return
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for range ticker.C {
				if !send() {
					return
				}
			}
		},
	}.ServeHTTP(w, r)
}
