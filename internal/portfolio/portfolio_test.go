package portfolio

import (
	"testing"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func dec(s string) xdecimal.Decimal { return xdecimal.MustParse(s) }

func TestRecomputeUnrealizedLong(t *testing.T) {
	p := Empty("BTC-USDT")
	p.Quantity = dec("2")
	p.AveragePrice = dec("100")
	p.RecomputeUnrealized(dec("110"))

	if !p.UnrealizedPnL.Equal(dec("20")) {
		t.Errorf("UnrealizedPnL = %s, want 20", p.UnrealizedPnL)
	}
}

func TestRecomputeUnrealizedShort(t *testing.T) {
	p := Empty("BTC-USDT")
	p.Quantity = dec("-2")
	p.AveragePrice = dec("100")
	p.RecomputeUnrealized(dec("90"))

	if !p.UnrealizedPnL.Equal(dec("20")) {
		t.Errorf("UnrealizedPnL = %s, want 20", p.UnrealizedPnL)
	}
}

func TestRecomputeUnrealizedFlatIsZero(t *testing.T) {
	p := Empty("BTC-USDT")
	p.RecomputeUnrealized(dec("999"))
	if !p.UnrealizedPnL.IsZero() {
		t.Errorf("UnrealizedPnL = %s, want 0 for flat position", p.UnrealizedPnL)
	}
}

func TestBalanceLocked(t *testing.T) {
	b := Balance{Total: dec("100"), Available: dec("60")}
	if !b.Locked().Equal(dec("40")) {
		t.Errorf("Locked() = %s, want 40", b.Locked())
	}
}
