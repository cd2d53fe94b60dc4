// tradecore runs the in-process trading engine: a virtual-clock-driven
// order book, risk-gated order/position state machine, and the adapters
// that feed it market data and carry its events back out.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/adapters/wsfeed"
	"github.com/arvindk/tradecore/internal/config"
	"github.com/arvindk/tradecore/internal/core"
	"github.com/arvindk/tradecore/internal/ledger"
	"github.com/arvindk/tradecore/internal/notify"
	"github.com/arvindk/tradecore/internal/router"
)

const version = "1.0.0"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("version", version).Str("clock_mode", cfg.ClockMode.String()).Msg("🚀 tradecore starting...")

	ldg, err := ledger.Open(cfg.LedgerDriver, cfg.LedgerDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}

	var callbacks core.Callbacks = core.NoopCallbacks{}
	if cfg.TelegramToken != "" {
		tg, err := notify.New(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize telegram notifier, continuing without it")
		} else {
			callbacks = tg
			log.Info().Msg("📲 telegram notifications enabled")
		}
	}

	tc := core.New(cfg.ClockMode, core.WithCallbacks(callbacks), core.WithRiskLimits(cfg.Risk))
	tc.Start()

	mdRouter := router.New(tc.Registry(), callbacks)

	feed := wsfeed.New(cfg.WSFeedURL, mdRouter, nil)
	feed.Start()

	log.Info().Msg("✅ all services started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 shutting down...")

	feed.Stop()
	tc.Stop()
	for _, pos := range tc.GetAllPositions() {
		if err := ldg.RecordPositionSnapshot(pos, tc.Now()); err != nil {
			log.Error().Err(err).Str("symbol", pos.Symbol).Msg("failed to snapshot position at shutdown")
		}
	}

	log.Info().Msg("👋 goodbye")
}
