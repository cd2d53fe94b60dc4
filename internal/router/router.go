// Package router implements MarketDataRouter: the best-effort,
// non-blocking fan-out of normalized venue ticks into the right
// OrderBook, and of trade ticks into a trade-event sink.
package router

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/internal/book"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// MarketTick is a single price-level update from a venue adapter.
type MarketTick struct {
	Symbol    string
	Price     xdecimal.Decimal
	Quantity  xdecimal.Decimal
	Timestamp time.Time
	IsBid     bool
	// UpdateID is the venue-provided monotonic sequence number for this
	// symbol. If zero, Timestamp's Unix-millis value is used instead.
	UpdateID int64
}

// TradeTick is a single informational trade report; it never mutates a book.
type TradeTick struct {
	Symbol    string
	Price     xdecimal.Decimal
	Quantity  xdecimal.Decimal
	Timestamp time.Time
	IsBuy     bool
}

// TradeSink receives routed trade ticks and market-data echoes. Both
// methods must be fast and non-blocking — the router calls them inline.
type TradeSink interface {
	OnMarketData(symbol string, price, qty xdecimal.Decimal, isBid bool)
	OnTrade(symbol string, price, qty xdecimal.Decimal, isBuy bool)
}

// Router fans incoming ticks out to the correct OrderBook in registry,
// never blocking its caller beyond O(1) book operations.
type Router struct {
	registry *book.Registry
	sink     TradeSink
}

// New constructs a Router over registry, notifying sink of every routed tick.
func New(registry *book.Registry, sink TradeSink) *Router {
	return &Router{registry: registry, sink: sink}
}

// SubmitMarketTick looks up or creates the book for tick.Symbol and
// applies the level update to the correct side.
func (r *Router) SubmitMarketTick(tick MarketTick) {
	id := tick.UpdateID
	if id == 0 {
		id = tick.Timestamp.UnixMilli()
	}

	b := r.registry.GetOrCreate(tick.Symbol)
	if tick.IsBid {
		b.UpdateBid(tick.Price, tick.Quantity, id)
	} else {
		b.UpdateAsk(tick.Price, tick.Quantity, id)
	}

	r.safeNotifyMarketData(tick)
}

// SubmitTradeTick forwards an informational trade to the sink without
// touching any book.
func (r *Router) SubmitTradeTick(tick TradeTick) {
	r.safeNotifyTrade(tick)
}

func (r *Router) safeNotifyMarketData(tick MarketTick) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn().Str("symbol", tick.Symbol).Interface("panic", rec).Msg("market data listener panicked, dropping")
		}
	}()
	if r.sink != nil {
		r.sink.OnMarketData(tick.Symbol, tick.Price, tick.Quantity, tick.IsBid)
	}
}

func (r *Router) safeNotifyTrade(tick TradeTick) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn().Str("symbol", tick.Symbol).Interface("panic", rec).Msg("trade listener panicked, dropping")
		}
	}()
	if r.sink != nil {
		r.sink.OnTrade(tick.Symbol, tick.Price, tick.Quantity, tick.IsBuy)
	}
}
