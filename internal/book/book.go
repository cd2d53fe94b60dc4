package book

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/pkg/clock"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// UpdateCallback is invoked synchronously, under the book's listener lock,
// after every successful mutator. It must be short and non-blocking and
// must not reenter the same book.
type UpdateCallback func(*OrderBook)

// LevelUpdate is one price/amount change within a batch passed to
// ApplyUpdates.
type LevelUpdate struct {
	Price  xdecimal.Decimal
	Amount xdecimal.Decimal
}

// Snapshot is the canonical JSON shape returned by ToJSON.
type Snapshot struct {
	Symbol       string      `json:"symbol"`
	Timestamp    int64       `json:"timestamp"`
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

// OrderBook pairs a symbol's bid and ask BookSides with update-sequencing
// state and a listener list.
type OrderBook struct {
	Symbol string
	Bids   *BookSide
	Asks   *BookSide

	clock *clock.Clock

	mu             sync.Mutex // serializes mutators and guards last-update state
	lastUpdateID   int64
	lastUpdateTime int64 // unix nanos, read via LastUpdateTime()

	listenersMu sync.Mutex
	listeners   []UpdateCallback
}

// New constructs an empty OrderBook for symbol, timestamping updates from clk.
func New(symbol string, clk *clock.Clock) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		Bids:   NewBookSide(Bid),
		Asks:   NewBookSide(Ask),
		clock:  clk,
	}
}

// UpdateBid applies a single bid-side level change.
func (b *OrderBook) UpdateBid(price, amount xdecimal.Decimal, id int64) {
	b.mu.Lock()
	now := b.clock.Now()
	b.Bids.Update(price, amount, id, now)
	b.lastUpdateID = id
	b.lastUpdateTime = now.UnixNano()
	b.mu.Unlock()
	b.notify()
}

// UpdateAsk applies a single ask-side level change.
func (b *OrderBook) UpdateAsk(price, amount xdecimal.Decimal, id int64) {
	b.mu.Lock()
	now := b.clock.Now()
	b.Asks.Update(price, amount, id, now)
	b.lastUpdateID = id
	b.lastUpdateTime = now.UnixNano()
	b.mu.Unlock()
	b.notify()
}

// ApplyUpdates applies every bid update, then every ask update, as a single
// atomic operation from a listener's perspective: one notification, one
// timestamp. finalID becomes last_update_id even for empty batches.
func (b *OrderBook) ApplyUpdates(bids, asks []LevelUpdate, finalID int64) {
	b.mu.Lock()
	now := b.clock.Now()
	for _, u := range bids {
		b.Bids.Update(u.Price, u.Amount, finalID, now)
	}
	for _, u := range asks {
		b.Asks.Update(u.Price, u.Amount, finalID, now)
	}
	b.lastUpdateID = finalID
	b.lastUpdateTime = now.UnixNano()
	b.mu.Unlock()
	b.notify()
}

// BestBid returns the best bid price, or Decimal zero if the side is
// empty — a sentinel value; callers in domains where zero is a legal
// price must also consult Bids.Empty().
func (b *OrderBook) BestBid() xdecimal.Decimal {
	lv, ok := b.Bids.Best()
	if !ok {
		return xdecimal.Zero
	}
	return lv.Price
}

// BestAsk returns the best ask price, or Decimal zero if the side is empty.
func (b *OrderBook) BestAsk() xdecimal.Decimal {
	lv, ok := b.Asks.Best()
	if !ok {
		return xdecimal.Zero
	}
	return lv.Price
}

// MidPrice is the arithmetic mean of best bid and best ask, or zero if
// either side is empty.
func (b *OrderBook) MidPrice() xdecimal.Decimal {
	if b.Bids.Empty() || b.Asks.Empty() {
		return xdecimal.Zero
	}
	return b.BestBid().Add(b.BestAsk()).Div(xdecimal.FromInt(2))
}

// Spread is best ask minus best bid, or zero if either side is empty.
func (b *OrderBook) Spread() xdecimal.Decimal {
	if b.Bids.Empty() || b.Asks.Empty() {
		return xdecimal.Zero
	}
	return b.BestAsk().Sub(b.BestBid())
}

// ImpactPrice is the volume-weighted average price a market order of qty
// would achieve walking the opposite side, or zero if the book doesn't
// hold enough liquidity to fill qty.
func (b *OrderBook) ImpactPrice(isBuy bool, qty xdecimal.Decimal) xdecimal.Decimal {
	if qty.IsZero() || qty.IsNegative() {
		return xdecimal.Zero
	}
	side := b.Bids
	if isBuy {
		side = b.Asks
	}

	remaining := qty
	notional := xdecimal.Zero
	for _, lv := range side.Levels(0) {
		if !remaining.IsPositive() {
			break
		}
		take := lv.Amount
		if remaining.LessThan(take) {
			take = remaining
		}
		notional = notional.Add(take.Mul(lv.Price))
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		return xdecimal.Zero
	}
	return notional.Div(qty)
}

// VolumeAtPrice sums the amounts on the opposite side that a sweep to
// price would touch: asks at-or-below price for a buy sweep, bids
// at-or-above price for a sell sweep.
func (b *OrderBook) VolumeAtPrice(isBuy bool, price xdecimal.Decimal) xdecimal.Decimal {
	if isBuy {
		return b.Asks.VolumeAtOrBetter(price)
	}
	return b.Bids.VolumeAtOrBetter(price)
}

// RegisterUpdateCallback appends a listener invoked after every successful mutator.
func (b *OrderBook) RegisterUpdateCallback(cb UpdateCallback) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, cb)
}

func (b *OrderBook) notify() {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	for _, cb := range b.listeners {
		b.safeInvoke(cb)
	}
}

func (b *OrderBook) safeInvoke(cb UpdateCallback) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("symbol", b.Symbol).Interface("panic", r).Msg("order book listener panicked, dropping")
		}
	}()
	cb(b)
}

// IsValid reports whether the book is in a valid state: either side is
// empty, or best_bid < best_ask. A crossed book (best_bid ≥ best_ask with
// both sides populated) is the one FATAL-kind invariant violation this
// package can detect; there is no automatic recovery, only detection.
func (b *OrderBook) IsValid() bool {
	if b.Bids.Empty() || b.Asks.Empty() {
		return true
	}
	return b.BestBid().LessThan(b.BestAsk())
}

// LastUpdateID returns the book's monotonic update sequence number.
func (b *OrderBook) LastUpdateID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdateID
}

// ToJSON renders a canonical snapshot of the top `depth` levels per side
// (depth=0 for all levels).
func (b *OrderBook) ToJSON(depth int) Snapshot {
	b.mu.Lock()
	id := b.lastUpdateID
	tsNanos := b.lastUpdateTime
	b.mu.Unlock()

	snap := Snapshot{Symbol: b.Symbol, LastUpdateID: id, Timestamp: tsNanos / int64(1e6)}
	for _, lv := range b.Bids.Levels(depth) {
		snap.Bids = append(snap.Bids, [2]string{lv.Price.String(), lv.Amount.String()})
	}
	for _, lv := range b.Asks.Levels(depth) {
		snap.Asks = append(snap.Asks, [2]string{lv.Price.String(), lv.Amount.String()})
	}
	return snap
}

// Clear empties both sides. Used by TradingCore.Reset for backtest harnesses.
func (b *OrderBook) Clear() {
	b.Bids.Clear()
	b.Asks.Clear()
}
