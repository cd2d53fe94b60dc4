// Package portfolio holds the data types TradingCore mutates on every
// fill: Position, Balance, and the historical Trade record.
package portfolio

import (
	"time"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Position is the running state for one symbol: signed quantity (long
// positive, short negative), volume-weighted average entry price, and
// accumulated P&L.
type Position struct {
	Symbol        string           `json:"symbol"`
	Quantity      xdecimal.Decimal `json:"quantity"`
	AveragePrice  xdecimal.Decimal `json:"average_price"`
	UnrealizedPnL xdecimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL   xdecimal.Decimal `json:"realized_pnl"`
	LastUpdate    time.Time        `json:"last_update"`
}

// Empty returns the zero-value position for symbol.
func Empty(symbol string) Position {
	return Position{
		Symbol:        symbol,
		Quantity:      xdecimal.Zero,
		AveragePrice:  xdecimal.Zero,
		UnrealizedPnL: xdecimal.Zero,
		RealizedPnL:   xdecimal.Zero,
	}
}

// RecomputeUnrealized sets UnrealizedPnL from the current mark price:
// quantity * (mark - average_price). Flat positions always mark to zero.
func (p *Position) RecomputeUnrealized(markPrice xdecimal.Decimal) {
	if p.Quantity.IsZero() {
		p.UnrealizedPnL = xdecimal.Zero
		return
	}
	p.UnrealizedPnL = p.Quantity.Mul(markPrice.Sub(p.AveragePrice))
}

// Balance is the held amount of one currency, split into available and
// locked (locked = total - available).
type Balance struct {
	Currency   string           `json:"currency"`
	Total      xdecimal.Decimal `json:"total"`
	Available  xdecimal.Decimal `json:"available"`
	LastUpdate time.Time        `json:"last_update"`
}

// Locked returns total - available.
func (b Balance) Locked() xdecimal.Decimal {
	return b.Total.Sub(b.Available)
}

// EmptyBalance returns the zero-value balance for currency.
func EmptyBalance(currency string) Balance {
	return Balance{Currency: currency, Total: xdecimal.Zero, Available: xdecimal.Zero}
}

// Trade is a historical record of one fill, independent of the order's
// own execution ledger — this is the portfolio-level audit trail.
type Trade struct {
	TradeID         string           `json:"trade_id"`
	ClientOrderID   string           `json:"client_order_id"`
	ExchangeOrderID string           `json:"exchange_order_id"`
	Symbol          string           `json:"symbol"`
	Side            string           `json:"side"`
	Price           xdecimal.Decimal `json:"price"`
	Quantity        xdecimal.Decimal `json:"quantity"`
	Fee             xdecimal.Decimal `json:"fee"`
	FeeCurrency     string           `json:"fee_currency"`
	Timestamp       time.Time        `json:"timestamp"`
}
