// Package book implements the price-time-priority limit order book: a
// single side's sorted price levels (BookSide), a symbol's paired bid/ask
// sides with batch updates and valuation queries (OrderBook), and a
// concurrent symbol→OrderBook lookup (OrderBookRegistry).
package book

import (
	"time"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Side identifies which half of a book a BookSide represents. It governs
// sort direction only — BUY sorts descending (best price highest), SELL
// sorts ascending (best price lowest).
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// PriceLevel is one price point on one side of one symbol's book.
type PriceLevel struct {
	Price    xdecimal.Decimal
	Amount   xdecimal.Decimal
	UpdateID int64
	Arrival  time.Time
}

// better reports whether level a has strictly better priority than b on
// the given side: better price first, earliest arrival breaking ties.
func better(side Side, a, b PriceLevel) bool {
	if !a.Price.Equal(b.Price) {
		if side == Bid {
			return a.Price.GreaterThan(b.Price)
		}
		return a.Price.LessThan(b.Price)
	}
	return a.Arrival.Before(b.Arrival)
}
