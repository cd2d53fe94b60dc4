package book

import (
	"testing"

	"github.com/arvindk/tradecore/pkg/clock"
)

func newTestBook() *OrderBook {
	return New("BTC-USD", clock.New(clock.Backtest))
}

func TestOrderBookBuildScenario(t *testing.T) {
	b := newTestBook()
	b.ApplyUpdates(
		[]LevelUpdate{{Price: d("49900"), Amount: d("1.5")}, {Price: d("49850"), Amount: d("2.3")}},
		[]LevelUpdate{{Price: d("50000"), Amount: d("1.2")}, {Price: d("50050"), Amount: d("0.8")}},
		10,
	)

	if got := b.BestBid(); !got.Equal(d("49900")) {
		t.Errorf("BestBid = %s, want 49900", got)
	}
	if got := b.BestAsk(); !got.Equal(d("50000")) {
		t.Errorf("BestAsk = %s, want 50000", got)
	}
	if got := b.MidPrice(); !got.Equal(d("49950")) {
		t.Errorf("MidPrice = %s, want 49950", got)
	}
	if got := b.Spread(); !got.Equal(d("100")) {
		t.Errorf("Spread = %s, want 100", got)
	}
	if got := b.LastUpdateID(); got != 10 {
		t.Errorf("LastUpdateID = %d, want 10", got)
	}
	if !b.IsValid() {
		t.Error("expected valid book")
	}
}

func TestOrderBookImpactPrice(t *testing.T) {
	b := newTestBook()
	b.ApplyUpdates(nil, []LevelUpdate{
		{Price: d("100"), Amount: d("1")},
		{Price: d("101"), Amount: d("1")},
		{Price: d("102"), Amount: d("1")},
	}, 1)

	got := b.ImpactPrice(true, d("2"))
	want := d("100.5") // (1*100 + 1*101) / 2
	if !got.Equal(want) {
		t.Errorf("ImpactPrice = %s, want %s", got, want)
	}
}

func TestOrderBookImpactPriceInsufficientLiquidity(t *testing.T) {
	b := newTestBook()
	b.ApplyUpdates(nil, []LevelUpdate{{Price: d("100"), Amount: d("1")}}, 1)

	got := b.ImpactPrice(true, d("5"))
	if !got.IsZero() {
		t.Errorf("ImpactPrice = %s, want 0 (insufficient liquidity)", got)
	}
}

func TestOrderBookZeroAmountDelete(t *testing.T) {
	b := newTestBook()
	b.UpdateBid(d("100"), d("1"), 1)
	if b.Bids.Empty() {
		t.Fatal("expected a bid level")
	}
	b.UpdateBid(d("100"), d("0"), 2)
	if !b.Bids.Empty() {
		t.Fatal("expected bid side empty after zero-amount update")
	}
}

func TestOrderBookEmptySideQueriesAreZero(t *testing.T) {
	b := newTestBook()
	if !b.BestBid().IsZero() {
		t.Error("BestBid on empty side should be zero sentinel")
	}
	if !b.MidPrice().IsZero() {
		t.Error("MidPrice with one empty side should be zero")
	}
	if !b.Spread().IsZero() {
		t.Error("Spread with one empty side should be zero")
	}
	if !b.IsValid() {
		t.Error("empty book should be valid")
	}
}

func TestOrderBookCrossedIsInvalid(t *testing.T) {
	b := newTestBook()
	b.UpdateBid(d("100"), d("1"), 1)
	b.UpdateAsk(d("99"), d("1"), 2)
	if b.IsValid() {
		t.Error("expected crossed book to be invalid")
	}
}

func TestOrderBookListenerNotifiedAndPanicIsolated(t *testing.T) {
	b := newTestBook()
	calls := 0
	b.RegisterUpdateCallback(func(ob *OrderBook) { panic("listener boom") })
	b.RegisterUpdateCallback(func(ob *OrderBook) { calls++ })

	b.UpdateBid(d("100"), d("1"), 1)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (surviving listener still runs)", calls)
	}
}

func TestOrderBookVolumeAtPrice(t *testing.T) {
	b := newTestBook()
	b.ApplyUpdates(nil, []LevelUpdate{
		{Price: d("100"), Amount: d("1")},
		{Price: d("101"), Amount: d("2")},
	}, 1)

	got := b.VolumeAtPrice(true, d("100"))
	if !got.Equal(d("1")) {
		t.Errorf("VolumeAtPrice(buy, 100) = %s, want 1", got)
	}
}

func TestOrderBookToJSONSnapshot(t *testing.T) {
	b := newTestBook()
	b.ApplyUpdates(
		[]LevelUpdate{{Price: d("100"), Amount: d("1")}},
		[]LevelUpdate{{Price: d("101"), Amount: d("2")}},
		5,
	)
	snap := b.ToJSON(0)
	if snap.Symbol != "BTC-USD" {
		t.Errorf("Symbol = %s", snap.Symbol)
	}
	if snap.LastUpdateID != 5 {
		t.Errorf("LastUpdateID = %d, want 5", snap.LastUpdateID)
	}
	if len(snap.Bids) != 1 || snap.Bids[0][0] != "100" {
		t.Errorf("Bids = %v", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0][0] != "101" {
		t.Errorf("Asks = %v", snap.Asks)
	}
}
