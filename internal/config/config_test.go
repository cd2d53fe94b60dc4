package config

import (
	"os"
	"testing"

	"github.com/arvindk/tradecore/pkg/clock"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("CLOCK_MODE")
	os.Unsetenv("RISK_MAX_ORDER_SIZE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClockMode != clock.Live {
		t.Errorf("ClockMode = %v, want Live", cfg.ClockMode)
	}
	if cfg.LedgerDriver != "sqlite" {
		t.Errorf("LedgerDriver = %s, want sqlite", cfg.LedgerDriver)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Setenv("CLOCK_MODE", "backtest")
	defer os.Unsetenv("CLOCK_MODE")
	os.Setenv("RISK_MAX_ORDER_SIZE", "5")
	defer os.Unsetenv("RISK_MAX_ORDER_SIZE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClockMode != clock.Backtest {
		t.Errorf("ClockMode = %v, want Backtest", cfg.ClockMode)
	}
	if !cfg.Risk.MaxOrderSize.Equal(xdecimal.FromInt(5)) {
		t.Errorf("MaxOrderSize = %s, want 5", cfg.Risk.MaxOrderSize)
	}
}
