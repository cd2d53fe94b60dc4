package execstub

import (
	"testing"
	"time"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func TestSubmitOrderDryRunSynthesizesFullFill(t *testing.T) {
	c, err := New("", "", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	now := time.Now()
	o := order.New("c1", "BTC-USDT", order.Buy, order.Limit, xdecimal.MustParse("50000"), xdecimal.MustParse("1"), now)

	fill, err := c.SubmitOrder(o)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if !fill.Price.Equal(o.Price) || !fill.Quantity.Equal(o.Quantity) {
		t.Errorf("fill = %+v, want price/quantity matching order", fill)
	}
	if fill.Symbol != "BTC-USDT" || fill.Side != order.Buy {
		t.Errorf("fill = %+v, want symbol/side matching order", fill)
	}
}

func TestSubmitOrderEmptyVenueURLImpliesDryRun(t *testing.T) {
	c, err := New("", "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.dryRun {
		t.Fatal("expected dryRun to be forced true when venueURL is empty")
	}
}

func TestBuildSignedOrderWithoutKeyLeavesSignatureEmpty(t *testing.T) {
	c, err := New("", "", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Now()
	o := order.New("c2", "ETH-USDT", order.Sell, order.Limit, xdecimal.MustParse("2000"), xdecimal.MustParse("3"), now)

	signed, err := c.buildSignedOrder(o)
	if err != nil {
		t.Fatalf("buildSignedOrder: %v", err)
	}
	if signed.Signature != "" {
		t.Errorf("Signature = %q, want empty without a private key", signed.Signature)
	}
	if signed.Symbol != "ETH-USDT" || signed.Side != "SELL" {
		t.Errorf("signed = %+v, want symbol/side matching order", signed)
	}
}

func TestBuildSignedOrderWithKeyProducesSignature(t *testing.T) {
	// A deterministic, well-known test private key (never used for funds).
	c, err := New("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318", "https://example.invalid", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Now()
	o := order.New("c3", "BTC-USDT", order.Buy, order.Limit, xdecimal.MustParse("100"), xdecimal.MustParse("1"), now)

	signed, err := c.buildSignedOrder(o)
	if err != nil {
		t.Fatalf("buildSignedOrder: %v", err)
	}
	if signed.Signature == "" {
		t.Error("Signature is empty, want a signed attestation")
	}
	if signed.Maker == "" {
		t.Error("Maker is empty, want the derived address")
	}
}
