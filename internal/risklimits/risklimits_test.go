package risklimits

import (
	"testing"
	"time"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func dec(s string) xdecimal.Decimal { return xdecimal.MustParse(s) }

func newOrder(side order.Side, qty string) *order.Order {
	return order.New("c1", "BTC-USDT", side, order.Limit, dec("100"), dec(qty), time.Now())
}

func TestCheckOrderSizeReject(t *testing.T) {
	limits := Default()
	limits.MaxOrderSize = dec("1.0")
	a := Check(limits, newOrder(order.Buy, "1.5"), xdecimal.Zero, xdecimal.Zero)
	if a.Approved {
		t.Fatal("expected rejection: order exceeds max_order_size")
	}
}

func TestCheckPositionSizeReject(t *testing.T) {
	limits := Default()
	limits.MaxOrderSize = dec("100")
	limits.MaxPositionSize = dec("5")
	a := Check(limits, newOrder(order.Buy, "2"), dec("4"), xdecimal.Zero)
	if a.Approved {
		t.Fatal("expected rejection: resulting position exceeds max_position_size")
	}
}

func TestCheckPositionSizeAllowsReducingSell(t *testing.T) {
	limits := Default()
	limits.MaxPositionSize = dec("5")
	a := Check(limits, newOrder(order.Sell, "2"), dec("4"), xdecimal.Zero)
	if !a.Approved {
		t.Fatalf("expected approval: sell reduces position, got reason %q", a.Reason)
	}
}

func TestCheckDailyLossReject(t *testing.T) {
	limits := Default()
	limits.MaxDailyLoss = dec("100")
	a := Check(limits, newOrder(order.Buy, "1"), xdecimal.Zero, dec("-150"))
	if a.Approved {
		t.Fatal("expected rejection: daily loss limit breached")
	}
}

func TestCheckDisabledLimitsPassThrough(t *testing.T) {
	limits := Default()
	limits.EnableOrderLimit = false
	limits.MaxOrderSize = dec("1")
	a := Check(limits, newOrder(order.Buy, "50"), xdecimal.Zero, xdecimal.Zero)
	if !a.Approved {
		t.Fatalf("expected approval with order limit disabled, got reason %q", a.Reason)
	}
}

func TestCheckApprovesWithinLimits(t *testing.T) {
	a := Check(Default(), newOrder(order.Buy, "1"), xdecimal.Zero, xdecimal.Zero)
	if !a.Approved {
		t.Fatalf("expected approval, got reason %q", a.Reason)
	}
}
