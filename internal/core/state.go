package core

import (
	"encoding/json"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Statistics is the JSON shape returned by GetStatistics.
type Statistics struct {
	Running        bool             `json:"running"`
	ActiveOrders   int              `json:"active_orders"`
	TotalTrades    int              `json:"total_trades"`
	RealizedPnL    xdecimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL  xdecimal.Decimal `json:"unrealized_pnl"`
	DailyPnL       xdecimal.Decimal `json:"daily_pnl"`
	ClockMode      string           `json:"clock_mode"`
}

// GetStatistics returns a snapshot of engine-wide counters and P&L totals.
func (c *TradingCore) GetStatistics() Statistics {
	c.stateMu.RLock()
	active := len(c.activeOrders)
	trades := len(c.tradeHistory)
	daily := c.dailyPnL
	c.stateMu.RUnlock()

	return Statistics{
		Running:       c.IsRunning(),
		ActiveOrders:  active,
		TotalTrades:   trades,
		RealizedPnL:   c.GetRealizedPnL(),
		UnrealizedPnL: c.GetUnrealizedPnL(),
		DailyPnL:      daily,
		ClockMode:     c.clock.Mode().String(),
	}
}

// snapshotWire is the persistence surface from §6: positions, balances,
// and the two P&L totals. Orders and order books are never part of it.
type snapshotWire struct {
	Positions []snapshotPosition `json:"positions"`
	Balances  []snapshotBalance  `json:"balances"`
	TotalPnL  xdecimal.Decimal   `json:"total_pnl"`
	DailyPnL  xdecimal.Decimal   `json:"daily_pnl"`
}

type snapshotPosition struct {
	Symbol       string           `json:"symbol"`
	Quantity     xdecimal.Decimal `json:"quantity"`
	AveragePrice xdecimal.Decimal `json:"average_price"`
	RealizedPnL  xdecimal.Decimal `json:"realized_pnl"`
}

type snapshotBalance struct {
	Currency  string           `json:"currency"`
	Total     xdecimal.Decimal `json:"total"`
	Available xdecimal.Decimal `json:"available"`
}

// ExportState renders the persistence surface: positions, balances, and
// the two running P&L totals.
func (c *TradingCore) ExportState() ([]byte, error) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	w := snapshotWire{TotalPnL: c.totalPnL, DailyPnL: c.dailyPnL}
	for _, p := range c.positions {
		w.Positions = append(w.Positions, snapshotPosition{
			Symbol: p.Symbol, Quantity: p.Quantity, AveragePrice: p.AveragePrice, RealizedPnL: p.RealizedPnL,
		})
	}
	for _, b := range c.balances {
		w.Balances = append(w.Balances, snapshotBalance{
			Currency: b.Currency, Total: b.Total, Available: b.Available,
		})
	}
	return json.Marshal(w)
}

// ImportState restores positions, balances, and P&L totals from a
// snapshot produced by ExportState. It does not touch active orders or
// order books — those are never part of the persistence surface.
func (c *TradingCore) ImportState(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	c.positions = make(map[string]portfolio.Position, len(w.Positions))
	for _, p := range w.Positions {
		c.positions[p.Symbol] = portfolio.Position{
			Symbol: p.Symbol, Quantity: p.Quantity, AveragePrice: p.AveragePrice,
			RealizedPnL: p.RealizedPnL, UnrealizedPnL: xdecimal.Zero,
		}
	}
	c.balances = make(map[string]portfolio.Balance, len(w.Balances))
	for _, b := range w.Balances {
		c.balances[b.Currency] = portfolio.Balance{Currency: b.Currency, Total: b.Total, Available: b.Available}
	}
	c.totalPnL = w.TotalPnL
	c.dailyPnL = w.DailyPnL
	return nil
}

// Reset clears active orders, positions, balances, trade history, P&L
// totals, and every order book — intended for BACKTEST harnesses running
// multiple passes over the same TradingCore.
func (c *TradingCore) Reset() {
	c.stateMu.Lock()
	c.activeOrders = make(map[string]*order.Order)
	c.positions = make(map[string]portfolio.Position)
	c.balances = make(map[string]portfolio.Balance)
	c.tradeHistory = nil
	c.totalPnL = xdecimal.Zero
	c.dailyPnL = xdecimal.Zero
	c.stateMu.Unlock()

	c.registry.ClearAll()
}
