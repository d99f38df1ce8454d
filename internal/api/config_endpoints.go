package api

import (
	"comment-ranker/internal/config"
	"net/http"
)

// handleConfigOptions lists the selectable backends and the non-secret
// defaults the server is running with. DSNs and passwords are never echoed.
func (s *Server) handleConfigOptions(w http.ResponseWriter, r *http.Request) {
	cfg := config.AppConfig
	writeJSON(w, http.StatusOK, map[string]any{
		"sheet_backends":   []string{"google", "xlsx", "memory"},
		"store_backends":   []string{"file", "sqlite", "mysql", "postgres", "mongodb", "none"},
		"save_data_option": []string{"json", "csv"},
		"cache_backends":   []string{"memory", "redis", "none"},
		"defaults": map[string]any{
			"sheet_backend":          cfg.SheetBackend,
			"append_interval_ms":     cfg.AppendIntervalMs,
			"sheet_batch_append":     cfg.SheetBatchAppend,
			"format_row_ceiling":     cfg.FormatRowCeiling,
			"timezone":               cfg.Timezone,
			"store_backend":          cfg.StoreBackend,
			"save_data_option":       cfg.SaveDataOption,
			"cache_backend":          cfg.CacheBackend,
			"favorite_cache_ttl_sec": cfg.FavoriteCacheTTLSec,
			"http_retry_count":       cfg.HttpRetryCount,
			"mongo_db":               cfg.MongoDB,
		},
	})
}
