package core

import (
	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/risklimits"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// SubmitOrder validates o, risk-gates it, and — on success — transitions
// it to OPEN and stores it under its client_order_id. Returns false
// without mutating state on validation failure, a duplicate id, or a risk
// rejection (in the rejection case on_order_rejected is enqueued first).
func (c *TradingCore) SubmitOrder(o *order.Order) bool {
	if err := o.Validate(); err != nil {
		return false
	}

	c.stateMu.Lock()
	if _, exists := c.activeOrders[o.ClientOrderID]; exists {
		c.stateMu.Unlock()
		return false
	}

	currentQty := c.positions[o.TradingPair].Quantity
	dailyPnL := c.dailyPnL
	limits := c.limits
	c.stateMu.Unlock()

	approval := risklimits.Check(limits, o, currentQty, dailyPnL)
	if !approval.Approved {
		now := c.clock.Now()
		o.Reject(approval.Reason, now)
		c.enqueue(func() { c.callbacks.OnOrderRejected(o) })
		return false
	}

	now := c.clock.Now()
	if err := o.Accept(now); err != nil {
		return false
	}

	c.stateMu.Lock()
	c.activeOrders[o.ClientOrderID] = o
	c.stateMu.Unlock()
	return true
}

// CancelOrder transitions the order to CANCELLED and removes it from the
// active set, returning false if no such active order exists.
func (c *TradingCore) CancelOrder(clientOrderID string) bool {
	c.stateMu.Lock()
	o, ok := c.activeOrders[clientOrderID]
	if !ok {
		c.stateMu.Unlock()
		return false
	}
	delete(c.activeOrders, clientOrderID)
	c.stateMu.Unlock()

	if err := o.Cancel(c.clock.Now()); err != nil {
		return false
	}
	c.enqueue(func() { c.callbacks.OnOrderCancelled(o) })
	return true
}

// ModifyOrder updates the price of an active order in place. newPrice is
// applied only if non-zero — the zero Decimal is the "not supplied"
// sentinel. newQuantity is accepted for signature compatibility but never
// applied: quantity modification is not supported in place, callers must
// cancel-and-resubmit instead.
func (c *TradingCore) ModifyOrder(clientOrderID string, newPrice, newQuantity xdecimal.Decimal) bool {
	c.stateMu.RLock()
	o, ok := c.activeOrders[clientOrderID]
	c.stateMu.RUnlock()
	if !ok {
		return false
	}
	if !newPrice.IsZero() {
		o.ModifyPrice(newPrice, c.clock.Now())
	}
	return true
}

// GetActiveOrders returns every non-terminal order, optionally filtered to
// one trading pair (empty string returns all).
func (c *TradingCore) GetActiveOrders(symbol string) []*order.Order {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]*order.Order, 0, len(c.activeOrders))
	for _, o := range c.activeOrders {
		if symbol != "" && o.TradingPair != symbol {
			continue
		}
		out = append(out, o)
	}
	return out
}
