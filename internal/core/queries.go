package core

import (
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/internal/risklimits"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// GetPosition returns the position for symbol, or the empty position if
// none is held.
func (c *TradingCore) GetPosition(symbol string) portfolio.Position {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if p, ok := c.positions[symbol]; ok {
		return p
	}
	return portfolio.Empty(symbol)
}

// GetAllPositions returns every tracked position, including flat ones
// still present in the map.
func (c *TradingCore) GetAllPositions() []portfolio.Position {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]portfolio.Position, 0, len(c.positions))
	for _, p := range c.positions {
		out = append(out, p)
	}
	return out
}

// GetBalance returns the balance for currency, or the empty balance if none held.
func (c *TradingCore) GetBalance(currency string) portfolio.Balance {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if b, ok := c.balances[currency]; ok {
		return b
	}
	return portfolio.EmptyBalance(currency)
}

// GetAllBalances returns every tracked balance.
func (c *TradingCore) GetAllBalances() []portfolio.Balance {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]portfolio.Balance, 0, len(c.balances))
	for _, b := range c.balances {
		out = append(out, b)
	}
	return out
}

// GetPortfolioValue sums every balance into baseCcy terms: balances
// already in baseCcy contribute their total directly; others are
// converted using the mid price of the "<CCY>-<baseCcy>" book, skipped
// (contributing zero) if no such book has been created.
func (c *TradingCore) GetPortfolioValue(baseCcy string) xdecimal.Decimal {
	c.stateMu.RLock()
	balances := make([]portfolio.Balance, 0, len(c.balances))
	for _, b := range c.balances {
		balances = append(balances, b)
	}
	c.stateMu.RUnlock()

	total := xdecimal.Zero
	for _, b := range balances {
		if b.Currency == baseCcy {
			total = total.Add(b.Total)
			continue
		}
		ob, ok := c.registry.Get(b.Currency + "-" + baseCcy)
		if !ok {
			continue
		}
		mid := ob.MidPrice()
		if mid.IsZero() {
			continue
		}
		total = total.Add(b.Total.Mul(mid))
	}
	return total
}

// GetRealizedPnL sums realized_pnl across every position.
func (c *TradingCore) GetRealizedPnL() xdecimal.Decimal {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	total := xdecimal.Zero
	for _, p := range c.positions {
		total = total.Add(p.RealizedPnL)
	}
	return total
}

// GetUnrealizedPnL sums unrealized_pnl across every position.
func (c *TradingCore) GetUnrealizedPnL() xdecimal.Decimal {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	total := xdecimal.Zero
	for _, p := range c.positions {
		total = total.Add(p.UnrealizedPnL)
	}
	return total
}

// GetDailyPnL returns the running daily realized P&L total.
func (c *TradingCore) GetDailyPnL() xdecimal.Decimal {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.dailyPnL
}

// ResetDaily zeroes the daily P&L counter. There is no automatic calendar
// boundary; callers invoke this explicitly (documented decision — see
// design notes).
func (c *TradingCore) ResetDaily() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.dailyPnL = xdecimal.Zero
}

// GetTradeHistory returns trades in insertion order, newest last,
// optionally filtered to one symbol and capped to the last `limit`
// entries (limit<=0 returns everything that matches the filter).
func (c *TradingCore) GetTradeHistory(symbol string, limit int) []portfolio.Trade {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	matched := make([]portfolio.Trade, 0, len(c.tradeHistory))
	for _, t := range c.tradeHistory {
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		matched = append(matched, t)
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// SetRiskLimits replaces the active risk limits.
func (c *TradingCore) SetRiskLimits(l risklimits.Limits) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.limits = l
}

// RiskLimits returns the currently active risk limits.
func (c *TradingCore) RiskLimits() risklimits.Limits {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.limits
}
