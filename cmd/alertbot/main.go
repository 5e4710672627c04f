package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/config"
	"github.com/alchemistbuilder/stockdrivernews/internal/aggregate"
	"github.com/alchemistbuilder/stockdrivernews/internal/correlate"
	"github.com/alchemistbuilder/stockdrivernews/internal/database"
	"github.com/alchemistbuilder/stockdrivernews/internal/digest"
	"github.com/alchemistbuilder/stockdrivernews/internal/notify"
)

// deliveryRetention bounds the alert history kept in Postgres.
const deliveryRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}
	if cfg.TelegramChatID == 0 {
		log.Fatal().Msg("TELEGRAM_CHAT_ID not set in environment")
	}

	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	sender, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	agg := aggregate.New(cfg, aggregate.DefaultProviders(cfg))
	builder := digest.New(agg, correlate.New())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Strs("symbols", cfg.Watchlist).Int("minPriority", cfg.MinAlertPriority).
		Dur("every", cfg.AlertPollEvery).Msg("Alert bot started")

	ticker := time.NewTicker(cfg.AlertPollEvery)
	defer ticker.Stop()

	scan(ctx, builder, db, sender, cfg)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			return
		case <-ticker.C:
			scan(ctx, builder, db, sender, cfg)
		}
	}
}

// scan runs one alert pass: score the watchlist, drop alerts already
// delivered today, send the rest and record them.
func scan(ctx context.Context, builder *digest.Builder, db *database.DB, sender *notify.Telegram, cfg *config.Config) {
	hits, err := builder.ScanAlerts(ctx, cfg.Watchlist, cfg.MinAlertPriority)
	if err != nil {
		log.Error().Err(err).Msg("Alert scan failed")
		return
	}

	today := time.Now()
	for _, hit := range hits {
		fresh := hit
		fresh.Alerts = nil
		for _, alert := range hit.Alerts {
			delivered, err := db.WasDelivered(hit.Symbol, alert.Type, today)
			if err != nil {
				log.Error().Err(err).Str("symbol", hit.Symbol).Msg("Delivery lookup failed")
				continue
			}
			if delivered {
				continue
			}
			fresh.Alerts = append(fresh.Alerts, alert)
		}
		if len(fresh.Alerts) == 0 {
			continue
		}

		if err := sender.SendAlerts(fresh); err != nil {
			log.Error().Err(err).Str("symbol", hit.Symbol).Msg("Alert delivery failed")
			continue
		}
		for _, alert := range fresh.Alerts {
			if err := db.RecordDelivery(hit.Symbol, alert, hit.PriorityScore, today); err != nil {
				log.Error().Err(err).Str("symbol", hit.Symbol).Msg("Failed to record delivery")
			}
		}
		log.Info().Str("symbol", hit.Symbol).Int("alerts", len(fresh.Alerts)).
			Int("priority", hit.PriorityScore).Msg("Alerts delivered")
	}

	if err := db.PruneDeliveries(today.Add(-deliveryRetention)); err != nil {
		log.Warn().Err(err).Msg("Failed to prune old deliveries")
	}
}
