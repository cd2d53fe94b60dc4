package order

import (
	"encoding/json"
	"time"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// wireOrder is the stable JSON shape: every stored field from the data
// model plus the derived fields computed at marshal time. Unmarshalling
// restores only the stored fields; derived fields are recomputed by the
// caller from the restored Order, never trusted from the wire.
type wireOrder struct {
	ClientOrderID   string           `json:"client_order_id"`
	TradingPair     string           `json:"trading_pair"`
	Side            Side             `json:"side"`
	Type            Type             `json:"type"`
	BaseCcy         string           `json:"base_ccy"`
	QuoteCcy        string           `json:"quote_ccy"`
	Price           xdecimal.Decimal `json:"price"`
	Quantity        xdecimal.Decimal `json:"quantity"`
	FilledQuantity  xdecimal.Decimal `json:"filled_quantity"`
	CreationTime    time.Time        `json:"creation_time"`
	LastUpdateTime  time.Time        `json:"last_update_time"`
	Status          Status           `json:"status"`
	PositionTag     string           `json:"position_tag,omitempty"`
	ExchangeOrderID string           `json:"exchange_order_id,omitempty"`
	Executions      []Execution      `json:"executions"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	ExpiryTime      *time.Time       `json:"expiry_time,omitempty"`

	// Derived, recomputed on every marshal — never authoritative on read.
	RemainingQuantity     xdecimal.Decimal `json:"remaining_quantity"`
	FillPercentage        xdecimal.Decimal `json:"fill_percentage"`
	AgeMs                 int64            `json:"age_ms"`
	IsActive              bool             `json:"is_active"`
	AverageExecutionPrice xdecimal.Decimal `json:"average_execution_price"`
	TotalFees             xdecimal.Decimal `json:"total_fees"`
}

// ToJSON renders the order with the stored fields plus derived fields,
// using `now` to compute age_ms (the order's own clock is external to
// this type, so callers supply the current time).
func (o *Order) ToJSON(now time.Time) ([]byte, error) {
	o.mu.Lock()
	w := wireOrder{
		ClientOrderID:   o.ClientOrderID,
		TradingPair:     o.TradingPair,
		Side:            o.Side,
		Type:            o.Type,
		BaseCcy:         o.BaseCcy,
		QuoteCcy:        o.QuoteCcy,
		Price:           o.Price,
		Quantity:        o.Quantity,
		FilledQuantity:  o.FilledQuantity,
		CreationTime:    o.CreationTime,
		LastUpdateTime:  o.LastUpdateTime,
		Status:          o.Status,
		PositionTag:     o.PositionTag,
		ExchangeOrderID: o.ExchangeOrderID,
		Executions:      append([]Execution(nil), o.Executions...),
		RejectionReason: o.RejectionReason,
		ExpiryTime:      o.ExpiryTime,
	}
	o.mu.Unlock()

	w.RemainingQuantity = o.Remaining()
	w.FillPercentage = o.FillPercentage()
	w.AgeMs = now.Sub(w.CreationTime).Milliseconds()
	w.IsActive = o.IsActive()
	w.AverageExecutionPrice = o.AverageExecutionPrice()
	w.TotalFees = o.TotalFees()

	return json.Marshal(w)
}

// FromJSON restores an Order from its stable JSON form, dropping derived
// fields — from_json(to_json(o)) restores every stored field exactly.
func FromJSON(data []byte) (*Order, error) {
	var w wireOrder
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &Order{
		ClientOrderID:   w.ClientOrderID,
		TradingPair:     w.TradingPair,
		Side:            w.Side,
		Type:            w.Type,
		BaseCcy:         w.BaseCcy,
		QuoteCcy:        w.QuoteCcy,
		Price:           w.Price,
		Quantity:        w.Quantity,
		FilledQuantity:  w.FilledQuantity,
		CreationTime:    w.CreationTime,
		LastUpdateTime:  w.LastUpdateTime,
		Status:          w.Status,
		PositionTag:     w.PositionTag,
		ExchangeOrderID: w.ExchangeOrderID,
		Executions:      w.Executions,
		RejectionReason: w.RejectionReason,
		ExpiryTime:      w.ExpiryTime,
	}, nil
}
