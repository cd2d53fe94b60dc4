// Package order implements the order entity: its status state machine,
// execution ledger, derived fields, and stable JSON serialization.
package order

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// MarshalJSON renders the side as its string form.
func (s Side) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

// UnmarshalJSON parses the string form.
func (s *Side) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "BUY":
		*s = Buy
	case "SELL":
		*s = Sell
	default:
		return fmt.Errorf("order: invalid side %s", b)
	}
	return nil
}

// Type is the order type.
type Type int

const (
	Limit Type = iota
	Market
	StopLimit
	StopMarket
)

func (t Type) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case StopLimit:
		return "STOP_LIMIT"
	case StopMarket:
		return "STOP_MARKET"
	default:
		return "UNKNOWN"
	}
}

func (t Type) MarshalJSON() ([]byte, error) { return []byte(`"` + t.String() + `"`), nil }

func (t *Type) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "LIMIT":
		*t = Limit
	case "MARKET":
		*t = Market
	case "STOP_LIMIT":
		*t = StopLimit
	case "STOP_MARKET":
		*t = StopMarket
	default:
		return fmt.Errorf("order: invalid type %s", b)
	}
	return nil
}

// Status is a position in the order's one-way state machine.
type Status int

const (
	Pending Status = iota
	Open
	Partial
	Filled
	Cancelled
	Rejected
	Expired
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Open:
		return "OPEN"
	case Partial:
		return "PARTIAL"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rejected:
		return "REJECTED"
	case Expired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

func (s Status) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

func (s *Status) UnmarshalJSON(b []byte) error {
	m := map[string]Status{
		"PENDING": Pending, "OPEN": Open, "PARTIAL": Partial, "FILLED": Filled,
		"CANCELLED": Cancelled, "REJECTED": Rejected, "EXPIRED": Expired,
	}
	v, ok := m[strings.Trim(string(b), `"`)]
	if !ok {
		return fmt.Errorf("order: invalid status %s", b)
	}
	*s = v
	return nil
}

// IsTerminal reports whether status is one from which no further
// transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case Filled, Cancelled, Rejected, Expired:
		return true
	default:
		return false
	}
}

// Execution is one fill applied against an order.
type Execution struct {
	ExecutionID string           `json:"execution_id"`
	Quantity    xdecimal.Decimal `json:"quantity"`
	Price       xdecimal.Decimal `json:"price"`
	FeeAmount   xdecimal.Decimal `json:"fee_amount"`
	FeeCurrency string           `json:"fee_currency"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Order is a client-originated order and its full lifecycle state.
// Exported fields are read-only from outside the package's own mutators —
// StatusSnapshot reads the status under the order's lock.
type Order struct {
	mu sync.Mutex

	ClientOrderID   string
	TradingPair     string
	Side            Side
	Type            Type
	BaseCcy         string
	QuoteCcy        string
	Price           xdecimal.Decimal
	Quantity        xdecimal.Decimal
	FilledQuantity  xdecimal.Decimal
	CreationTime    time.Time
	LastUpdateTime  time.Time
	Status          Status
	PositionTag     string
	ExchangeOrderID string
	Executions      []Execution
	RejectionReason string
	ExpiryTime      *time.Time
}

// New constructs a PENDING order. tradingPair of the form "BASE-QUOTE" sets
// BaseCcy/QuoteCcy; absent a dash, base=tradingPair and quote defaults to
// "USDT".
func New(clientOrderID, tradingPair string, side Side, typ Type, price, quantity xdecimal.Decimal, now time.Time) *Order {
	base, quote := splitPair(tradingPair)
	return &Order{
		ClientOrderID:  clientOrderID,
		TradingPair:    tradingPair,
		Side:           side,
		Type:           typ,
		BaseCcy:        base,
		QuoteCcy:       quote,
		Price:          price,
		Quantity:       quantity,
		FilledQuantity: xdecimal.Zero,
		CreationTime:   now,
		LastUpdateTime: now,
		Status:         Pending,
	}
}

func splitPair(pair string) (base, quote string) {
	if i := strings.IndexByte(pair, '-'); i >= 0 {
		return pair[:i], pair[i+1:]
	}
	return pair, "USDT"
}

// Validate checks the static invariants from construction: non-empty id
// and pair, positive quantity, positive price for LIMIT orders, and
// filled within [0, quantity].
func (o *Order) Validate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ClientOrderID == "" {
		return fmt.Errorf("order: client_order_id is empty")
	}
	if o.TradingPair == "" {
		return fmt.Errorf("order: trading_pair is empty")
	}
	if !o.Quantity.IsPositive() {
		return fmt.Errorf("order: quantity must be positive")
	}
	if o.Type == Limit && !o.Price.IsPositive() {
		return fmt.Errorf("order: price must be positive for LIMIT orders")
	}
	if o.FilledQuantity.IsNegative() || o.FilledQuantity.GreaterThan(o.Quantity) {
		return fmt.Errorf("order: filled_quantity out of [0, quantity] range")
	}
	return nil
}

// transitionLocked validates `to` is reachable from the order's current
// status and applies it, stamping last_update_time. Callers must hold o.mu.
func (o *Order) transitionLocked(to Status, now time.Time) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("order: cannot transition out of terminal status %s", o.Status)
	}
	switch o.Status {
	case Pending:
		if to != Open && to != Rejected {
			return fmt.Errorf("order: invalid transition %s -> %s", o.Status, to)
		}
	case Open, Partial:
		switch to {
		case Partial, Filled, Cancelled, Expired:
		default:
			return fmt.Errorf("order: invalid transition %s -> %s", o.Status, to)
		}
	default:
		return fmt.Errorf("order: invalid transition %s -> %s", o.Status, to)
	}
	o.Status = to
	o.LastUpdateTime = now
	return nil
}

// Accept transitions PENDING -> OPEN.
func (o *Order) Accept(now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitionLocked(Open, now)
}

// Reject transitions PENDING -> REJECTED with a reason.
func (o *Order) Reject(reason string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.transitionLocked(Rejected, now); err != nil {
		return err
	}
	o.RejectionReason = reason
	return nil
}

// Cancel transitions OPEN/PARTIAL -> CANCELLED.
func (o *Order) Cancel(now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitionLocked(Cancelled, now)
}

// Expire transitions OPEN/PARTIAL -> EXPIRED.
func (o *Order) Expire(now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitionLocked(Expired, now)
}

// ApplyFill records a fill of qty at price, appending a synthetic
// execution if exec is nil, and transitions the order to FILLED (if fully
// filled) or PARTIAL. A fill that would push filled_quantity above
// quantity is clamped to the remaining quantity; the excess is returned as
// an error but the clamped portion is still applied.
func (o *Order) ApplyFill(qty, price xdecimal.Decimal, exec *Execution, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Status.IsTerminal() {
		return fmt.Errorf("order: cannot fill a terminal order (status %s)", o.Status)
	}

	remaining := o.Quantity.Sub(o.FilledQuantity)
	applied := qty
	var clampErr error
	if applied.GreaterThan(remaining) {
		clampErr = fmt.Errorf("order: fill quantity %s exceeds remaining %s, clamped", qty, remaining)
		applied = remaining
	}

	if exec == nil {
		exec = &Execution{
			ExecutionID: fmt.Sprintf("%s-exec-%d", o.ClientOrderID, len(o.Executions)+1),
			Quantity:    applied,
			Price:       price,
			FeeAmount:   xdecimal.Zero,
			FeeCurrency: o.QuoteCcy,
			Timestamp:   now,
		}
	} else {
		e := *exec
		e.Quantity = applied
		exec = &e
	}
	o.Executions = append(o.Executions, *exec)
	o.FilledQuantity = o.FilledQuantity.Add(applied)

	target := Partial
	if o.FilledQuantity.GreaterThanOrEqual(o.Quantity) {
		target = Filled
	}
	if err := o.transitionLocked(target, now); err != nil {
		return err
	}
	return clampErr
}

// AddExecution records an execution directly (e.g. a venue-reported
// partial) using the same accounting as ApplyFill, keeping the caller's
// execution id, price, fee and timestamp in the ledger for audit; its
// quantity is clamped to the remaining quantity as in ApplyFill.
func (o *Order) AddExecution(e Execution, now time.Time) error {
	return o.ApplyFill(e.Quantity, e.Price, &e, now)
}

// ModifyPrice updates price in place (LIMIT orders only in practice,
// though this type does not enforce that). Quantity modification is
// unsupported in place; callers cancel-and-resubmit instead.
func (o *Order) ModifyPrice(newPrice xdecimal.Decimal, now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Price = newPrice
	o.LastUpdateTime = now
}

// Remaining returns quantity - filled_quantity.
func (o *Order) Remaining() xdecimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Quantity.Sub(o.FilledQuantity)
}

// FillPercentage returns filled/quantity as a Decimal in [0, 1], or zero
// if quantity is zero.
func (o *Order) FillPercentage() xdecimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Quantity.IsZero() {
		return xdecimal.Zero
	}
	return o.FilledQuantity.Div(o.Quantity)
}

// AverageExecutionPrice is Σ(qty·price)/filled across executions, zero if
// nothing has filled yet.
func (o *Order) AverageExecutionPrice() xdecimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FilledQuantity.IsZero() {
		return xdecimal.Zero
	}
	notional := xdecimal.Zero
	for _, e := range o.Executions {
		notional = notional.Add(e.Quantity.Mul(e.Price))
	}
	return notional.Div(o.FilledQuantity)
}

// TotalFees sums fee_amount across executions, ignoring fee currency —
// callers mixing fee currencies must break this down themselves.
func (o *Order) TotalFees() xdecimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := xdecimal.Zero
	for _, e := range o.Executions {
		total = total.Add(e.FeeAmount)
	}
	return total
}

// IsActive reports whether the order is in a non-terminal status.
func (o *Order) IsActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.Status.IsTerminal()
}

// StatusSnapshot returns the order's current status without requiring the
// caller to hold any lock.
func (o *Order) StatusSnapshot() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Status
}

// Better reports whether o has strictly better sort priority than other
// under the book's comparator: price first (BUY higher wins, SELL lower
// wins), creation_time ascending breaking ties. Both orders must share a
// side; mixed-side comparisons are meaningless and return false.
func Better(o, other *Order) bool {
	o.mu.Lock()
	oSide, oPrice, oCreated := o.Side, o.Price, o.CreationTime
	o.mu.Unlock()

	other.mu.Lock()
	otherSide, otherPrice, otherCreated := other.Side, other.Price, other.CreationTime
	other.mu.Unlock()

	if oSide != otherSide {
		return false
	}
	if !oPrice.Equal(otherPrice) {
		if oSide == Buy {
			return oPrice.GreaterThan(otherPrice)
		}
		return oPrice.LessThan(otherPrice)
	}
	return oCreated.Before(otherCreated)
}
