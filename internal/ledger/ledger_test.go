package ledger

import (
	"testing"
	"time"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return l
}

func TestRecordAndLookupOrder(t *testing.T) {
	l := openTestLedger(t)
	now := time.Now()
	o := order.New("c1", "BTC-USDT", order.Buy, order.Limit, xdecimal.MustParse("100"), xdecimal.MustParse("1"), now)
	o.Accept(now)

	if err := l.RecordOrder(o); err != nil {
		t.Fatalf("RecordOrder: %v", err)
	}

	rec, err := l.OrderByID("c1")
	if err != nil {
		t.Fatalf("OrderByID: %v", err)
	}
	if rec.Status != "OPEN" {
		t.Errorf("Status = %s, want OPEN", rec.Status)
	}
}

func TestRecordTradeAndRecentTrades(t *testing.T) {
	l := openTestLedger(t)
	trade := portfolio.Trade{
		TradeID: "t1", Symbol: "BTC-USDT", Side: "BUY",
		Price: xdecimal.MustParse("100"), Quantity: xdecimal.MustParse("1"),
		Fee: xdecimal.Zero, FeeCurrency: "USDT", Timestamp: time.Now(),
	}
	if err := l.RecordTrade(trade); err != nil {
		t.Fatalf("RecordTrade: %v", err)
	}

	trades, err := l.RecentTrades("BTC-USDT", 10)
	if err != nil {
		t.Fatalf("RecentTrades: %v", err)
	}
	if len(trades) != 1 || trades[0].TradeID != "t1" {
		t.Fatalf("trades = %+v", trades)
	}
}
