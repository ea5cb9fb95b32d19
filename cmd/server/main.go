package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AngelCh415/GA4_REPORT/internal/config"
	"github.com/AngelCh415/GA4_REPORT/internal/httpx"
	"github.com/AngelCh415/GA4_REPORT/internal/ingest"
	"github.com/AngelCh415/GA4_REPORT/internal/prom"
	"github.com/AngelCh415/GA4_REPORT/internal/query"
	"github.com/AngelCh415/GA4_REPORT/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()

	r := httpx.NewRouter(httpx.Deps{
		Log:       logger,
		Store:     st,
		Query:     query.NewService(st),
		Fetcher:   ingest.NewFetcher(cl, logger, cfg),
		Metrics:   prom.NewMetrics(),
		MaxUpload: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port), slog.Int64("max_upload_bytes", cfg.MaxUploadBytes))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
