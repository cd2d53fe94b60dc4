package core

import (
	"fmt"
	"time"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// FillReport is an externally reported fill, matching the
// submit_fill_report inbound interface from §6.
type FillReport struct {
	ClientOrderID   string
	ExchangeOrderID string
	Symbol          string
	Side            order.Side
	Price           xdecimal.Decimal
	Quantity        xdecimal.Decimal
	FeeAmount       xdecimal.Decimal
	FeeCurrency     string
}

// SubmitFillReport drives steps (2)-(4) of on_exchange_fill: applying the
// fill to the matching active order, then to position, balance, and P&L.
func (c *TradingCore) SubmitFillReport(fill FillReport) {
	now := c.clock.Now()

	c.stateMu.Lock()
	o, hasOrder := c.activeOrders[fill.ClientOrderID]
	c.stateMu.Unlock()

	if hasOrder {
		exec := order.Execution{
			ExecutionID: fmt.Sprintf("%s-fill-%d", fill.ClientOrderID, now.UnixNano()),
			Quantity:    fill.Quantity,
			Price:       fill.Price,
			FeeAmount:   fill.FeeAmount,
			FeeCurrency: fill.FeeCurrency,
			Timestamp:   now,
		}
		if err := o.AddExecution(exec, now); err == nil && o.StatusSnapshot() == order.Filled {
			c.stateMu.Lock()
			delete(c.activeOrders, fill.ClientOrderID)
			c.stateMu.Unlock()
			c.enqueue(func() { c.callbacks.OnOrderFilled(o) })
		}
	}

	c.stateMu.Lock()
	pos := c.updatePositionLocked(fill, now)
	base, quote := splitSymbol(fill.Symbol)
	baseBal, quoteBal := c.updateBalanceLocked(fill, base, quote, now)

	c.nextTradeSeq++
	trade := portfolio.Trade{
		TradeID:         fmt.Sprintf("trade-%d", c.nextTradeSeq),
		ClientOrderID:   fill.ClientOrderID,
		ExchangeOrderID: fill.ExchangeOrderID,
		Symbol:          fill.Symbol,
		Side:            fill.Side.String(),
		Price:           fill.Price,
		Quantity:        fill.Quantity,
		Fee:             fill.FeeAmount,
		FeeCurrency:     fill.FeeCurrency,
		Timestamp:       now,
	}
	c.tradeHistory = append(c.tradeHistory, trade)
	c.stateMu.Unlock()

	c.enqueue(func() { c.callbacks.OnTradeExecuted(trade) })
	c.enqueue(func() { c.callbacks.OnPositionUpdate(pos) })
	c.enqueue(func() { c.callbacks.OnBalanceUpdate(baseBal) })
	c.enqueue(func() { c.callbacks.OnBalanceUpdate(quoteBal) })
}

// updatePositionLocked applies the fill's effect on the position per
// spec §4.6 step (2): weighted-average entry price accumulates on a BUY;
// a SELL realizes P&L against the existing average price. Callers must
// hold c.stateMu.
func (c *TradingCore) updatePositionLocked(fill FillReport, now time.Time) portfolio.Position {
	pos, ok := c.positions[fill.Symbol]
	if !ok {
		pos = portfolio.Empty(fill.Symbol)
	}

	if fill.Side == order.Buy {
		newQty := pos.Quantity.Add(fill.Quantity)
		if newQty.IsZero() {
			pos.AveragePrice = xdecimal.Zero
		} else {
			notional := pos.Quantity.Mul(pos.AveragePrice).Add(fill.Quantity.Mul(fill.Price))
			pos.AveragePrice = notional.Div(newQty)
		}
		pos.Quantity = newQty
	} else {
		realized := fill.Quantity.Mul(fill.Price.Sub(pos.AveragePrice))
		pos.RealizedPnL = pos.RealizedPnL.Add(realized)
		pos.Quantity = pos.Quantity.Sub(fill.Quantity)
		c.dailyPnL = c.dailyPnL.Add(realized)
		c.totalPnL = c.totalPnL.Add(realized)
	}
	pos.LastUpdate = now
	c.positions[fill.Symbol] = pos
	return pos
}

// updateBalanceLocked applies the fill's effect on the base and quote
// currency balances: base moves by ±quantity, quote moves by
// ∓quantity·price adjusted for the fee. Callers must hold c.stateMu.
func (c *TradingCore) updateBalanceLocked(fill FillReport, base, quote string, now time.Time) (portfolio.Balance, portfolio.Balance) {
	baseBal, ok := c.balances[base]
	if !ok {
		baseBal = portfolio.EmptyBalance(base)
	}
	quoteBal, ok := c.balances[quote]
	if !ok {
		quoteBal = portfolio.EmptyBalance(quote)
	}

	notional := fill.Quantity.Mul(fill.Price)
	feeInQuote := fill.FeeCurrency == quote || fill.FeeCurrency == ""

	if fill.Side == order.Buy {
		baseBal.Total = baseBal.Total.Add(fill.Quantity)
		baseBal.Available = baseBal.Available.Add(fill.Quantity)
		quoteDelta := notional
		if feeInQuote {
			quoteDelta = quoteDelta.Add(fill.FeeAmount)
		}
		quoteBal.Total = quoteBal.Total.Sub(quoteDelta)
		quoteBal.Available = quoteBal.Available.Sub(quoteDelta)
	} else {
		baseBal.Total = baseBal.Total.Sub(fill.Quantity)
		baseBal.Available = baseBal.Available.Sub(fill.Quantity)
		quoteDelta := notional
		if feeInQuote {
			quoteDelta = quoteDelta.Sub(fill.FeeAmount)
		}
		quoteBal.Total = quoteBal.Total.Add(quoteDelta)
		quoteBal.Available = quoteBal.Available.Add(quoteDelta)
	}

	if !feeInQuote {
		feeBal, ok := c.balances[fill.FeeCurrency]
		if !ok {
			feeBal = portfolio.EmptyBalance(fill.FeeCurrency)
		}
		feeBal.Total = feeBal.Total.Sub(fill.FeeAmount)
		feeBal.Available = feeBal.Available.Sub(fill.FeeAmount)
		feeBal.LastUpdate = now
		c.balances[fill.FeeCurrency] = feeBal
	}

	baseBal.LastUpdate = now
	quoteBal.LastUpdate = now
	c.balances[base] = baseBal
	c.balances[quote] = quoteBal
	return baseBal, quoteBal
}

func splitSymbol(pair string) (base, quote string) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '-' {
			return pair[:i], pair[i+1:]
		}
	}
	return pair, "USDT"
}
