package book

import (
	"testing"
	"time"

	"github.com/arvindk/tradecore/pkg/xdecimal"
)

func d(s string) xdecimal.Decimal { return xdecimal.MustParse(s) }

func TestBookSideUpdateInsertsLevel(t *testing.T) {
	s := NewBookSide(Bid)
	s.Update(d("100"), d("1.5"), 1, time.Now())

	levels := s.Levels(0)
	if len(levels) != 1 {
		t.Fatalf("len(levels) = %d, want 1", len(levels))
	}
	if !levels[0].Amount.Equal(d("1.5")) {
		t.Errorf("amount = %s, want 1.5", levels[0].Amount)
	}
}

func TestBookSideZeroAmountRemoves(t *testing.T) {
	s := NewBookSide(Bid)
	now := time.Now()
	s.Update(d("100"), d("1.5"), 1, now)
	s.Update(d("100"), d("0"), 2, now)

	if !s.Empty() {
		t.Fatal("expected side empty after zero-amount update")
	}
	// Second zero-amount update for an already-absent price is a no-op.
	s.Update(d("100"), d("0"), 3, now)
	if !s.Empty() {
		t.Fatal("expected side still empty")
	}
}

func TestBookSideBidOrderingDescending(t *testing.T) {
	s := NewBookSide(Bid)
	now := time.Now()
	s.Update(d("99"), d("1"), 1, now)
	s.Update(d("101"), d("1"), 2, now)
	s.Update(d("100"), d("1"), 3, now)

	levels := s.Levels(0)
	want := []string{"101", "100", "99"}
	for i, w := range want {
		if got := levels[i].Price.String(); got != w {
			t.Errorf("levels[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestBookSideAskOrderingAscending(t *testing.T) {
	s := NewBookSide(Ask)
	now := time.Now()
	s.Update(d("101"), d("1"), 1, now)
	s.Update(d("99"), d("1"), 2, now)
	s.Update(d("100"), d("1"), 3, now)

	levels := s.Levels(0)
	want := []string{"99", "100", "101"}
	for i, w := range want {
		if got := levels[i].Price.String(); got != w {
			t.Errorf("levels[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestBookSideReplaceSamePriceKeepsLatest(t *testing.T) {
	s := NewBookSide(Bid)
	base := time.Now()
	s.Update(d("100"), d("1"), 1, base.Add(time.Second))
	s.Update(d("100"), d("1"), 2, base) // same price: the second call replaces the level entirely
	// Replacing the same price resets arrival per documented policy, so the
	// level present is the one from the second call.
	lv, ok := s.Best()
	if !ok {
		t.Fatal("expected a level")
	}
	if lv.UpdateID != 2 {
		t.Errorf("UpdateID = %d, want 2 (replace semantics)", lv.UpdateID)
	}
}

func TestVolumeAtOrBetterBid(t *testing.T) {
	s := NewBookSide(Bid)
	now := time.Now()
	s.Update(d("100"), d("1"), 1, now)
	s.Update(d("99"), d("2"), 2, now)
	s.Update(d("98"), d("3"), 3, now)

	got := s.VolumeAtOrBetter(d("99"))
	if !got.Equal(d("3")) {
		t.Errorf("VolumeAtOrBetter(99) = %s, want 3", got)
	}
}

func TestVolumeAtOrBetterAsk(t *testing.T) {
	s := NewBookSide(Ask)
	now := time.Now()
	s.Update(d("100"), d("1"), 1, now)
	s.Update(d("101"), d("2"), 2, now)
	s.Update(d("102"), d("3"), 3, now)

	got := s.VolumeAtOrBetter(d("101"))
	if !got.Equal(d("3")) {
		t.Errorf("VolumeAtOrBetter(101) = %s, want 3", got)
	}
}

func TestBookSideLevelsLimit(t *testing.T) {
	s := NewBookSide(Bid)
	now := time.Now()
	for i, p := range []string{"100", "99", "98"} {
		s.Update(d(p), d("1"), int64(i), now)
	}
	if got := s.Levels(2); len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}
