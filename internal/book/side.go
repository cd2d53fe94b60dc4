package book

import (
	"sort"
	"sync"
	"time"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// BookSide is a concurrency-safe, sorted container of PriceLevels for one
// side of one symbol's book: BUY sorts price descending, SELL ascending,
// ties broken by earliest arrival.
type BookSide struct {
	mu      sync.Mutex
	side    Side
	byPrice map[string]PriceLevel
}

// NewBookSide constructs an empty side.
func NewBookSide(side Side) *BookSide {
	return &BookSide{side: side, byPrice: make(map[string]PriceLevel)}
}

// Update applies a venue-published level change. amount=0 removes the
// level at price (a no-op if the price is already absent); any other
// amount inserts or replaces the level for that price. arrival is stamped
// on every call, including a replace of an existing price — the book
// consumes exchange-published levels rather than anonymous orders, so
// resetting time priority on replace is acceptable and is the policy this
// type implements. Documented here because it is the one place the
// contract departs from "preserve priority across a refresh."
func (s *BookSide) Update(price, amount xdecimal.Decimal, updateID int64, arrival time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := price.String()
	if amount.IsZero() {
		delete(s.byPrice, key)
		return
	}
	s.byPrice[key] = PriceLevel{Price: price, Amount: amount, UpdateID: updateID, Arrival: arrival}
}

// sortedLocked returns every level in comparator order. Callers must hold s.mu.
func (s *BookSide) sortedLocked() []PriceLevel {
	out := make([]PriceLevel, 0, len(s.byPrice))
	for _, lv := range s.byPrice {
		out = append(out, lv)
	}
	sort.Slice(out, func(i, j int) bool { return better(s.side, out[i], out[j]) })
	return out
}

// Best returns the front level per the side's comparator, if any.
func (s *BookSide) Best() (PriceLevel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := s.sortedLocked()
	if len(sorted) == 0 {
		return PriceLevel{}, false
	}
	return sorted[0], true
}

// Levels returns the first limit levels in comparator order; limit=0
// returns all of them. The returned slice is a snapshot copy.
func (s *BookSide) Levels(limit int) []PriceLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := s.sortedLocked()
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// VolumeAtOrBetter sums amounts across levels priced at or better than
// price: price ≥ the given price on the BUY side, price ≤ it on the SELL
// side. Iteration stops at the first non-qualifying level, exploiting sort
// order.
func (s *BookSide) VolumeAtOrBetter(price xdecimal.Decimal) xdecimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := xdecimal.Zero
	for _, lv := range s.sortedLocked() {
		var qualifies bool
		if s.side == Bid {
			qualifies = lv.Price.GreaterThanOrEqual(price)
		} else {
			qualifies = lv.Price.LessThanOrEqual(price)
		}
		if !qualifies {
			break
		}
		total = total.Add(lv.Amount)
	}
	return total
}

// Clear empties the side.
func (s *BookSide) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPrice = make(map[string]PriceLevel)
}

// Size returns the number of distinct price levels.
func (s *BookSide) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byPrice)
}

// Empty reports whether the side has no levels.
func (s *BookSide) Empty() bool {
	return s.Size() == 0
}
