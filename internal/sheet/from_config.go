package sheet

import (
	"context"
	"fmt"
	"time"

	"comment-ranker/internal/config"
)

func NewProviderFromConfig(ctx context.Context, cfg config.Config) (Provider, error) {
	switch cfg.SheetBackend {
	case "", "google":
		return NewGoogleProvider(ctx, cfg.GoogleCredentialsFile)
	case "xlsx":
		return NewXlsxProvider(cfg.XlsxDir), nil
	case "memory":
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown sheet backend: %s (available: google, xlsx, memory)", cfg.SheetBackend)
	}
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		AppendInterval: time.Duration(cfg.AppendIntervalMs) * time.Millisecond,
		BatchAppend:    cfg.SheetBatchAppend,
		RowCeiling:     cfg.FormatRowCeiling,
	}
}
