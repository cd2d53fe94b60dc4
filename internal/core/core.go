// Package core implements TradingCore: the orchestrator that owns the
// order book registry, the clock, and all portfolio state, performs
// pre-trade risk gating and fill accounting, and dispatches callbacks
// through an internal event queue.
package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/internal/book"
	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/internal/risklimits"
	"github.com/arvindk/tradecore/pkg/clock"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// eventDispatchInterval mirrors the clock package's own poll granularity
// — both the clock dispatcher and this one are the only internal waits
// permitted by the concurrency model.
const eventDispatchInterval = 100 * time.Microsecond

// TradingCore is the single orchestrator for one trading session: one
// Clock, one OrderBookRegistry, and the maps of active orders, positions,
// balances, and trade history, all behind one reader-writer lock.
type TradingCore struct {
	clock    *clock.Clock
	registry *book.Registry
	callbacks Callbacks

	stateMu     sync.RWMutex
	activeOrders map[string]*order.Order
	positions    map[string]portfolio.Position
	balances     map[string]portfolio.Balance
	tradeHistory []portfolio.Trade
	limits       risklimits.Limits
	dailyPnL     xdecimal.Decimal
	totalPnL     xdecimal.Decimal
	nextTradeSeq int64

	queueMu sync.Mutex
	queue   []func()

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a TradingCore at construction.
type Option func(*TradingCore)

// WithCallbacks installs the outbound event sink. Defaults to NoopCallbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(c *TradingCore) { c.callbacks = cb }
}

// WithRiskLimits installs the initial risk limits. Defaults to risklimits.Default().
func WithRiskLimits(l risklimits.Limits) Option {
	return func(c *TradingCore) { c.limits = l }
}

// New initializes a TradingCore with a fresh Clock in the given mode and a
// fresh OrderBookRegistry, per spec's initialize(clock_mode) contract.
func New(mode clock.Mode, opts ...Option) *TradingCore {
	clk := clock.New(mode)
	c := &TradingCore{
		clock:        clk,
		registry:     book.NewRegistry(clk),
		callbacks:    NoopCallbacks{},
		activeOrders: make(map[string]*order.Order),
		positions:    make(map[string]portfolio.Position),
		balances:     make(map[string]portfolio.Balance),
		limits:       risklimits.Default(),
		dailyPnL:     xdecimal.Zero,
		totalPnL:     xdecimal.Zero,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry.SetCreateHook(c.hookBook)
	return c
}

// Clock returns the core's clock, for callers (e.g. a market data router)
// that need a shared notion of "now".
func (c *TradingCore) Clock() *clock.Clock { return c.clock }

// Registry returns the core's order book registry, for callers that need
// to route ticks into the correct book.
func (c *TradingCore) Registry() *book.Registry { return c.registry }

// Now returns the core's current time.
func (c *TradingCore) Now() time.Time { return c.clock.Now() }

// hookBook attaches the mark-to-market listener to a freshly created book:
// every successful mutator recomputes the matching position's
// unrealized_pnl from the book's mid price and enqueues on_position_update.
func (c *TradingCore) hookBook(b *book.OrderBook) {
	b.RegisterUpdateCallback(func(ob *book.OrderBook) {
		c.markToMarket(ob.Symbol, ob.MidPrice())
	})
}

func (c *TradingCore) markToMarket(symbol string, mark xdecimal.Decimal) {
	if mark.IsZero() {
		return
	}
	c.stateMu.Lock()
	pos, ok := c.positions[symbol]
	if !ok || pos.Quantity.IsZero() {
		c.stateMu.Unlock()
		return
	}
	pos.RecomputeUnrealized(mark)
	pos.LastUpdate = c.clock.Now()
	c.positions[symbol] = pos
	c.stateMu.Unlock()

	c.enqueue(func() { c.callbacks.OnPositionUpdate(pos) })
}

// enqueue appends fn to the event queue under the queue's own mutex only —
// never under stateMu, to avoid lock inversion.
func (c *TradingCore) enqueue(fn func()) {
	c.queueMu.Lock()
	c.queue = append(c.queue, fn)
	c.queueMu.Unlock()
}

func (c *TradingCore) drainQueue() []func() {
	c.queueMu.Lock()
	if len(c.queue) == 0 {
		c.queueMu.Unlock()
		return nil
	}
	pending := c.queue
	c.queue = nil
	c.queueMu.Unlock()
	return pending
}

// Start spawns the event-dispatch goroutine and starts the clock.
// Idempotent.
func (c *TradingCore) Start() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.clock.Start()
	go c.dispatchLoop()
}

// Stop cancels the event-dispatch goroutine, joins it, and stops the
// clock. Idempotent.
func (c *TradingCore) Stop() {
	c.runMu.Lock()
	if !c.running {
		c.runMu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	doneCh := c.doneCh
	c.runMu.Unlock()

	<-doneCh
	c.clock.Stop()
}

// IsRunning reports whether Start has been called without a matching Stop.
func (c *TradingCore) IsRunning() bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.running
}

func (c *TradingCore) dispatchLoop() {
	defer close(c.doneCh)
	ticker := time.NewTicker(eventDispatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			for _, fn := range c.drainQueue() {
				c.safeCall(fn)
			}
		}
	}
}

func (c *TradingCore) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("⚠️ event callback panicked, dropping")
			c.callbacks.OnError("event_dispatch", "callback panicked")
		}
	}()
	fn()
}
