package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/c2h5oh/datasize"
)

type Config struct {
	SourceURL      string
	Port           string
	HTTPTimeout    time.Duration
	MaxUploadBytes int64
	FetchRetries   int
	LogLevel       slog.Level
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		SourceURL:      os.Getenv("SOURCE_CSV_URL"),
		Port:           envOr("PORT", "8080"),
		HTTPTimeout:    to,
		MaxUploadBytes: sizeOr("MAX_UPLOAD_SIZE", 32*datasize.MB),
		FetchRetries:   intOr("FETCH_RETRIES", 3),
		LogLevel:       lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func intOr(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// sizeOr accepts sizes like "32MB" or "512kb".
func sizeOr(k string, def datasize.ByteSize) int64 {
	var ds datasize.ByteSize
	if err := ds.UnmarshalText([]byte(os.Getenv(k))); err != nil || ds == 0 {
		return int64(def)
	}
	return int64(ds)
}
