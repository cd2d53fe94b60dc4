package book

import (
	"sync"

	"github.com/arvindk/tradecore/pkg/clock"
)

// Registry is a concurrent symbol→OrderBook lookup. Books are created
// lazily on first access and stay registered until Remove drops them.
type Registry struct {
	mu         sync.RWMutex
	clock      *clock.Clock
	books      map[string]*OrderBook
	createHook func(*OrderBook)
}

// NewRegistry constructs an empty registry whose books timestamp updates from clk.
func NewRegistry(clk *clock.Clock) *Registry {
	return &Registry{clock: clk, books: make(map[string]*OrderBook)}
}

// SetCreateHook installs a callback invoked exactly once per created book,
// right after GetOrCreate lazily creates it (a symbol that is removed and
// then re-created gets the hook again). TradingCore uses this to
// attach its mark-to-market listener without the registry needing to know
// anything about portfolios.
func (r *Registry) SetCreateHook(fn func(*OrderBook)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createHook = fn
}

// GetOrCreate returns the book for symbol, creating it if this is the
// first reference.
func (r *Registry) GetOrCreate(symbol string) *OrderBook {
	r.mu.RLock()
	b, ok := r.books[symbol]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	if b, ok := r.books[symbol]; ok {
		r.mu.Unlock()
		return b
	}
	b = New(symbol, r.clock)
	r.books[symbol] = b
	hook := r.createHook
	r.mu.Unlock()

	if hook != nil {
		hook(b)
	}
	return b
}

// Get returns the book for symbol without creating it.
func (r *Registry) Get(symbol string) (*OrderBook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[symbol]
	return b, ok
}

// Has reports whether symbol has a registered book.
func (r *Registry) Has(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.books[symbol]
	return ok
}

// Remove drops symbol's book from the registry.
func (r *Registry) Remove(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, symbol)
}

// Symbols returns every registered symbol, in no particular order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.books))
	for s := range r.books {
		out = append(out, s)
	}
	return out
}

// ClearAll empties every registered book in place without removing them
// from the registry — used when resetting a backtest run between passes.
func (r *Registry) ClearAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.books {
		b.Clear()
	}
}

// Count returns the number of registered books.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}
