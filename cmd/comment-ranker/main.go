package main

import (
	"comment-ranker/internal/api"
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/logger"
	"comment-ranker/internal/platform"
	_ "comment-ranker/internal/platform/afreeca"
	"comment-ranker/internal/settings"
	"comment-ranker/internal/store"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", ".", "path to config file")
	apiMode := flag.Bool("api", false, "start the web form server")
	apiAddr := flag.String("addr", ":8080", "api server address")
	postURL := flag.String("url", "", "post url, overrides the saved settings")
	sheetName := flag.String("sheet", "", "spreadsheet name, overrides the saved settings")
	shareEmail := flag.String("email", "", "share a newly created spreadsheet with this address")
	cutoff := flag.Int("cutoff", -1, "favorite cutoff, 0 disables the check")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.InitFromConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if backend, err := store.Init(ctx); err != nil {
		logger.Warn("store init failed, runs will not be archived", "backend", backend, "err", err)
	} else {
		logger.Info("run archive ready", "backend", backend)
	}

	if *apiMode {
		srv := api.NewServer(nil)
		logger.Info("starting api server", "addr", *apiAddr)
		if err := http.ListenAndServe(*apiAddr, srv.Handler()); err != nil {
			logger.Error("api server failed", "err", err)
			os.Exit(1)
		}
		return
	}

	saved, err := settings.Load(config.AppConfig.SettingsFile)
	if err != nil {
		logger.Warn("load settings failed", "path", config.AppConfig.SettingsFile, "err", err)
	}
	req := crawler.RunRequest{PostURL: *postURL, SheetName: *sheetName, ShareEmail: *shareEmail, FavoriteCutoff: *cutoff}
	if req.FavoriteCutoff < 0 {
		req.FavoriteCutoff = settings.CutoffUnset
	}
	req = settings.Merge(settings.Merge(req, saved), crawler.RequestFromConfig(config.AppConfig))

	if err := req.Validate(); err != nil {
		logger.Error("invalid input", "err", err, "error_kind", crawler.KindOf(err))
		os.Exit(2)
	}
	if err := settings.Save(config.AppConfig.SettingsFile, req); err != nil {
		logger.Warn("save settings failed", "path", config.AppConfig.SettingsFile, "err", err)
	}

	r, err := platform.New(config.AppConfig.Platform, config.AppConfig)
	if err != nil {
		logger.Error("crawler init failed", "err", err)
		os.Exit(1)
	}
	res, err := r.Run(ctx, req)
	if err != nil {
		logger.Error("run failed", "err", err, "error_kind", crawler.KindOf(err), "run_id", res.RunID, "pages", res.Pages, "fetched", res.Fetched, "appended", res.Appended)
		os.Exit(1)
	}
	logger.Info("run finished successfully", "run_id", res.RunID, "sheet", res.SheetName, "pages", res.Pages, "fetched", res.Fetched, "appended", res.Appended, "favorites", res.Favorites)
}
