package core

import (
	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Callbacks is the outbound interface TradingCore drives through its
// event queue. Implementations must be fast and non-blocking — the order,
// trade, position, balance and error events run on the single
// event-dispatch goroutine, and a slow callback delays every subsequent
// event. TradingCore never calls OnMarketData or OnTrade; router.Router
// calls them inline on the ingesting goroutine when given a Callbacks as
// its sink.
type Callbacks interface {
	OnOrderFilled(o *order.Order)
	OnOrderCancelled(o *order.Order)
	OnOrderRejected(o *order.Order)
	OnTradeExecuted(t portfolio.Trade)
	OnPositionUpdate(p portfolio.Position)
	OnBalanceUpdate(b portfolio.Balance)
	OnMarketData(symbol string, price, qty xdecimal.Decimal, isBid bool)
	OnTrade(symbol string, price, qty xdecimal.Decimal, isBuy bool)
	OnError(source, message string)
}

// NoopCallbacks implements Callbacks with no-ops; embed it to implement
// only the events a particular consumer cares about.
type NoopCallbacks struct{}

func (NoopCallbacks) OnOrderFilled(*order.Order)                                  {}
func (NoopCallbacks) OnOrderCancelled(*order.Order)                               {}
func (NoopCallbacks) OnOrderRejected(*order.Order)                                {}
func (NoopCallbacks) OnTradeExecuted(portfolio.Trade)                             {}
func (NoopCallbacks) OnPositionUpdate(portfolio.Position)                         {}
func (NoopCallbacks) OnBalanceUpdate(portfolio.Balance)                           {}
func (NoopCallbacks) OnMarketData(string, xdecimal.Decimal, xdecimal.Decimal, bool) {}
func (NoopCallbacks) OnTrade(string, xdecimal.Decimal, xdecimal.Decimal, bool)     {}
func (NoopCallbacks) OnError(string, string)                                      {}
