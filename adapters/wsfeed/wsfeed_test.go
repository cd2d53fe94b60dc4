package wsfeed

import (
	"sync"
	"testing"

	"github.com/arvindk/tradecore/internal/router"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

type recordingSink struct {
	mu     sync.Mutex
	ticks  []router.MarketTick
	trades []router.TradeTick
}

func (s *recordingSink) SubmitMarketTick(tick router.MarketTick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, tick)
}

func (s *recordingSink) SubmitTradeTick(tick router.TradeTick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, tick)
}

func TestParseLevelValid(t *testing.T) {
	price, qty, ok := parseLevel([2]string{"50000", "1.5"})
	if !ok {
		t.Fatal("expected ok")
	}
	if !price.Equal(xdecimal.MustParse("50000")) || !qty.Equal(xdecimal.MustParse("1.5")) {
		t.Errorf("price=%s qty=%s", price, qty)
	}
}

func TestParseLevelInvalid(t *testing.T) {
	if _, _, ok := parseLevel([2]string{"not-a-number", "1"}); ok {
		t.Fatal("expected !ok for malformed price")
	}
}

func TestProcessMessageBookSubmitsBothSides(t *testing.T) {
	sink := &recordingSink{}
	f := New("wss://example.invalid/ws", sink, nil)

	f.processMessage([]byte(`{"event_type":"book","symbol":"BTC-USDT","bids":[["49900","1.5"]],"asks":[["50000","1.2"]],"update_id":7}`))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.ticks) != 2 {
		t.Fatalf("got %d ticks, want 2", len(sink.ticks))
	}
	for _, tick := range sink.ticks {
		if tick.Symbol != "BTC-USDT" || tick.UpdateID != 7 {
			t.Errorf("tick = %+v", tick)
		}
	}
}

func TestProcessMessageTradeSubmitsTick(t *testing.T) {
	sink := &recordingSink{}
	f := New("wss://example.invalid/ws", sink, nil)

	f.processMessage([]byte(`{"event_type":"trade","symbol":"BTC-USDT","price":"50000","quantity":"0.5","is_buy":true}`))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(sink.trades))
	}
	if !sink.trades[0].IsBuy || !sink.trades[0].Price.Equal(xdecimal.MustParse("50000")) {
		t.Errorf("trade = %+v", sink.trades[0])
	}
}

func TestProcessMessageUnknownEventTypeDropped(t *testing.T) {
	sink := &recordingSink{}
	f := New("wss://example.invalid/ws", sink, nil)

	f.processMessage([]byte(`{"event_type":"heartbeat"}`))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.ticks) != 0 || len(sink.trades) != 0 {
		t.Fatal("expected heartbeat to be dropped")
	}
}

func TestStopWithoutStartIsNoOp(t *testing.T) {
	sink := &recordingSink{}
	f := New("wss://example.invalid/ws", sink, nil)
	f.Stop() // must not panic when never started
}
