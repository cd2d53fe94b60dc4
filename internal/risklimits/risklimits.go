// Package risklimits implements the pre-trade risk gate: a single set of
// limits checked against a proposed order and the current portfolio state
// before TradingCore will accept it.
package risklimits

import (
	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// Limits is the full set of pre-trade risk limits. Each check is gated by
// its own enable flag so a deployment can turn on only the checks it wants.
type Limits struct {
	MaxPositionSize     xdecimal.Decimal
	MaxOrderSize        xdecimal.Decimal
	MaxDailyLoss        xdecimal.Decimal
	MaxDrawdown         xdecimal.Decimal
	MaxOrdersPerSecond  int
	EnablePositionLimit bool
	EnableOrderLimit    bool
	EnableLossLimit     bool
}

// Default returns conservative limits with every check enabled.
func Default() Limits {
	return Limits{
		MaxPositionSize:     xdecimal.FromInt(100),
		MaxOrderSize:        xdecimal.FromInt(10),
		MaxDailyLoss:        xdecimal.FromInt(1000),
		MaxDrawdown:         xdecimal.FromInt(5000),
		MaxOrdersPerSecond:  10,
		EnablePositionLimit: true,
		EnableOrderLimit:    true,
		EnableLossLimit:     true,
	}
}

// Approval is the result of a gate check.
type Approval struct {
	Approved bool
	Reason   string
}

func reject(asset, reason string) Approval {
	log.Debug().Str("symbol", asset).Str("reason", reason).Msg("🚫 order rejected by risk gate")
	return Approval{Approved: false, Reason: reason}
}

var approved = Approval{Approved: true}

// Check runs the pre-trade gate from spec §4.6: order size, then
// hypothetical post-fill position size, then the daily loss limit. The
// first failing check wins; currentPositionQty is signed (long positive,
// short negative).
func Check(limits Limits, o *order.Order, currentPositionQty, dailyPnL xdecimal.Decimal) Approval {
	if limits.EnableOrderLimit && o.Quantity.GreaterThan(limits.MaxOrderSize) {
		return reject(o.TradingPair, "order quantity exceeds max_order_size")
	}

	if limits.EnablePositionLimit {
		delta := o.Quantity
		if o.Side == order.Sell {
			delta = delta.Neg()
		}
		hypothetical := currentPositionQty.Add(delta)
		if hypothetical.Abs().GreaterThan(limits.MaxPositionSize) {
			return reject(o.TradingPair, "resulting position would exceed max_position_size")
		}
	}

	if limits.EnableLossLimit && dailyPnL.LessThan(limits.MaxDailyLoss.Neg()) {
		return reject(o.TradingPair, "daily loss limit breached")
	}

	return approved
}
