package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salary-board/internal/app"
	"salary-board/internal/assets"
	"salary-board/internal/cfg"
	"salary-board/internal/common"
	"salary-board/internal/dashboard"
	"salary-board/internal/metrics"
	"salary-board/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	src, closeSource := initializeSource(c)
	defer closeSource()

	loader := assets.NewLoader(src, mw)
	if err := loader.Preload(ctx); err != nil {
		log.Fatal().Err(err).Str("source", src.String()).Msg("failed to load assets")
	}
	for _, model := range loader.Models() {
		log.Info().
			Str("kind", model.Kind).
			Str("version", model.Version).
			Time("trained_at", model.TrainedAt).
			Msg("model ready")
	}

	a := app.New(loader, app.Options{
		FloorSalary:   c.FloorSalary,
		NeighborQuery: c.NeighborQuery,
		NeighborLimit: c.NeighborLimit,
		LeaderCount:   c.LeaderCount,
		Language:      c.Tag(),
	}, mw)

	d := dashboard.New(a, loader, mw, dashboard.Config{
		Port:         c.Port,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		Language:     c.Language,
	})
	if err := d.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start dashboard")
	}

	waitForShutdown(ctx, d)
}

// setupLogging applies the configured level and output format
func setupLogging(c cfg.Settings) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.LogFormat == common.LogFormatConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// initializeSource opens the artifact bundle when BUNDLE_PATH is set, else reads the
// individual files
func initializeSource(c cfg.Settings) (assets.Source, func()) {
	if !c.UsesBundle() {
		return assets.NewDirSource(c.PlayersPath, c.SeasonStatsPath, c.SalaryModelPath, c.NeighborModelPath), func() {}
	}

	store, err := storage.Open(c.BundlePath)
	if err != nil {
		log.Fatal().Err(err).Str("bundle", c.BundlePath).Msg("failed to open bundle")
	}
	if packedAt, err := store.PackedAt(); err == nil {
		log.Info().Str("bundle", c.BundlePath).Time("packed_at", packedAt).Msg("bundle opened")
	}
	return assets.NewBundleSource(store), func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close bundle")
		}
	}
}

// waitForShutdown blocks until a signal arrives, then stops the dashboard
func waitForShutdown(ctx context.Context, d *dashboard.Dashboard) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
