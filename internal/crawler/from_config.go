package crawler

import (
	"comment-ranker/internal/config"
	"strings"
)

func RequestFromConfig(cfg config.Config) RunRequest {
	return RunRequest{
		PostURL:        strings.TrimSpace(cfg.PostURL),
		SheetName:      strings.TrimSpace(cfg.SheetName),
		ShareEmail:     strings.TrimSpace(cfg.ShareEmail),
		FavoriteCutoff: cfg.FavoriteCutoff,
	}
}
