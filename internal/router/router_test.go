package router

import (
	"testing"
	"time"

	"github.com/arvindk/tradecore/internal/book"
	"github.com/arvindk/tradecore/pkg/clock"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func dec(s string) xdecimal.Decimal { return xdecimal.MustParse(s) }

type recordingSink struct {
	marketData int
	trades     int
}

func (r *recordingSink) OnMarketData(symbol string, price, qty xdecimal.Decimal, isBid bool) {
	r.marketData++
}
func (r *recordingSink) OnTrade(symbol string, price, qty xdecimal.Decimal, isBuy bool) {
	r.trades++
}

func TestSubmitMarketTickCreatesBookAndUpdatesSide(t *testing.T) {
	reg := book.NewRegistry(clock.New(clock.Backtest))
	sink := &recordingSink{}
	r := New(reg, sink)

	r.SubmitMarketTick(MarketTick{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1"), Timestamp: time.Now(), IsBid: true, UpdateID: 1})

	b, ok := reg.Get("BTC-USDT")
	if !ok {
		t.Fatal("expected book created")
	}
	if got := b.BestBid(); !got.Equal(dec("100")) {
		t.Errorf("BestBid = %s, want 100", got)
	}
	if sink.marketData != 1 {
		t.Errorf("marketData notifications = %d, want 1", sink.marketData)
	}
}

func TestSubmitMarketTickUsesTimestampWhenNoUpdateID(t *testing.T) {
	reg := book.NewRegistry(clock.New(clock.Backtest))
	r := New(reg, nil)
	ts := time.Unix(1700000000, 0)
	r.SubmitMarketTick(MarketTick{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1"), Timestamp: ts, IsBid: true})

	b, _ := reg.Get("BTC-USDT")
	if b.LastUpdateID() != ts.UnixMilli() {
		t.Errorf("LastUpdateID = %d, want %d", b.LastUpdateID(), ts.UnixMilli())
	}
}

func TestSubmitTradeTickDoesNotMutateBook(t *testing.T) {
	reg := book.NewRegistry(clock.New(clock.Backtest))
	sink := &recordingSink{}
	r := New(reg, sink)

	r.SubmitTradeTick(TradeTick{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1"), Timestamp: time.Now(), IsBuy: true})

	if reg.Has("BTC-USDT") {
		t.Fatal("trade ticks must not create or mutate a book")
	}
	if sink.trades != 1 {
		t.Errorf("trade notifications = %d, want 1", sink.trades)
	}
}

func TestNilSinkDoesNotPanic(t *testing.T) {
	reg := book.NewRegistry(clock.New(clock.Backtest))
	r := New(reg, nil)
	r.SubmitMarketTick(MarketTick{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1"), Timestamp: time.Now(), IsBid: true})
	r.SubmitTradeTick(TradeTick{Symbol: "BTC-USDT", Price: dec("100"), Quantity: dec("1"), Timestamp: time.Now(), IsBuy: true})
}
