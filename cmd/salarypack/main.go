package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"salary-board/internal/assets"
	"salary-board/internal/common"
	"salary-board/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line arguments
	var (
		outPath       = flag.String("out", "bundle.db", "Path of the bundle to write")
		playersPath   = flag.String("players", common.DefaultPlayersPath, "Player salary CSV")
		statsPath     = flag.String("stats", common.DefaultSeasonStatsPath, "Season statistics CSV")
		salaryModel   = flag.String("salary-model", common.DefaultSalaryModelPath, "Salary model JSON")
		neighborModel = flag.String("neighbor-model", common.DefaultNeighborModelPath, "Neighbor index JSON")
		logLevel      = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	// Setup logging
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Refuse to pack anything the dashboard could not load
	src := assets.NewDirSource(*playersPath, *statsPath, *salaryModel, *neighborModel)
	loader := assets.NewLoader(src, nil)
	if err := loader.Preload(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("artifacts failed validation")
	}

	files := map[string]string{
		storage.PlayersArtifact:       *playersPath,
		storage.SeasonStatsArtifact:   *statsPath,
		storage.SalaryModelArtifact:   *salaryModel,
		storage.NeighborModelArtifact: *neighborModel,
	}
	artifacts := make(map[string][]byte, len(files))
	for name, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to read artifact")
		}
		artifacts[name] = data
	}

	if err := storage.Pack(*outPath, artifacts, time.Now()); err != nil {
		log.Fatal().Err(err).Str("out", *outPath).Msg("failed to write bundle")
	}

	store, err := storage.Open(*outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to reopen bundle")
	}
	defer store.Close()

	names, err := store.Names()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list bundle")
	}

	fmt.Println("=== Bundle ===")
	fmt.Printf("Path: %s\n", store.Path())
	for _, name := range names {
		data, err := store.Get(name)
		if err != nil {
			log.Fatal().Err(err).Str("artifact", name).Msg("bundle verification failed")
		}
		fmt.Printf("  %-22s %8d bytes\n", name, len(data))
	}
	for _, m := range loader.Models() {
		fmt.Printf("Model: %s %s (%d features)\n", m.Kind, m.Version, len(m.Features))
	}
	fmt.Println("==============")
}
