package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/config"
	"github.com/alchemistbuilder/stockdrivernews/internal/aggregate"
	"github.com/alchemistbuilder/stockdrivernews/internal/correlate"
	"github.com/alchemistbuilder/stockdrivernews/internal/digest"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated watchlist override")
	healthFlag := flag.Bool("health", false, "probe provider health instead of building a digest")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	agg := aggregate.New(cfg, aggregate.DefaultProviders(cfg))
	ctx := context.Background()

	if *healthFlag {
		report := agg.CheckAllServicesHealth(ctx)
		writeJSON(report)
		return
	}

	symbols := cfg.Watchlist
	if *symbolsFlag != "" {
		symbols = splitSymbols(*symbolsFlag)
	}
	if len(symbols) == 0 {
		log.Fatal().Msg("No watchlist symbols configured")
	}

	log.Info().Strs("symbols", symbols).Msg("Building daily digest")

	builder := digest.New(agg, correlate.New())
	result, err := builder.Build(ctx, symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build digest")
	}

	writeJSON(result)
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}

func splitSymbols(raw string) []string {
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, strings.ToUpper(s))
		}
	}
	return symbols
}
