// Package config loads process configuration from the environment
// (optionally seeded by a .env file), the ambient layer every other
// package is wired against: clock mode, risk limits, ledger DSN, and
// notification credentials.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/arvindk/tradecore/internal/risklimits"
	"github.com/arvindk/tradecore/pkg/clock"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Config is the full set of process-level settings TradingCore and its
// adapters are wired from.
type Config struct {
	Debug bool

	ClockMode clock.Mode
	// SimulatedRate is the wall-clock multiplier read from SIMULATED_RATE.
	// It is not passed on: core.New builds its clock without a rate, so a
	// Simulated clock runs at clock's default rate of 1.0.
	SimulatedRate float64

	Risk risklimits.Limits

	// LedgerDriver selects the gorm dialect: "sqlite" or "postgres".
	LedgerDriver string
	// LedgerDSN is the driver-specific connection string. For sqlite
	// this is a file path; for postgres, a libpq connection string.
	LedgerDSN string

	TelegramToken  string
	TelegramChatID int64

	WSFeedURL string
}

// Load reads a .env file if present (missing is not an error) and then
// layers environment variables with documented defaults on top.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{
		Debug:         getEnvBool("DEBUG", false),
		ClockMode:     clock.ParseMode(getEnv("CLOCK_MODE", "live")),
		SimulatedRate: getEnvFloat("SIMULATED_RATE", 1.0),

		Risk: risklimits.Limits{
			MaxPositionSize:     getEnvDecimal("RISK_MAX_POSITION_SIZE", xdecimal.FromInt(100)),
			MaxOrderSize:        getEnvDecimal("RISK_MAX_ORDER_SIZE", xdecimal.FromInt(10)),
			MaxDailyLoss:        getEnvDecimal("RISK_MAX_DAILY_LOSS", xdecimal.FromInt(1000)),
			MaxDrawdown:         getEnvDecimal("RISK_MAX_DRAWDOWN", xdecimal.FromInt(5000)),
			MaxOrdersPerSecond:  getEnvInt("RISK_MAX_ORDERS_PER_SECOND", 10),
			EnablePositionLimit: getEnvBool("RISK_ENABLE_POSITION_LIMITS", true),
			EnableOrderLimit:    getEnvBool("RISK_ENABLE_ORDER_LIMITS", true),
			EnableLossLimit:     getEnvBool("RISK_ENABLE_LOSS_LIMITS", true),
		},

		LedgerDriver: getEnv("LEDGER_DRIVER", "sqlite"),
		LedgerDSN:    getEnv("LEDGER_DSN", "data/tradecore.db"),

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),

		WSFeedURL: getEnv("WS_FEED_URL", "wss://stream.example.com/ws"),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue xdecimal.Decimal) xdecimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := xdecimal.Parse(value); err == nil {
			return d
		}
	}
	return defaultValue
}
