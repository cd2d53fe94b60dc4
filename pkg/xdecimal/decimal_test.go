package xdecimal

import "testing"

func TestParseStringRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "-1", "1.5", "-1.5", "123.456789012345678", "0.000000000000000001"}
	for _, s := range cases {
		d, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := d.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseTruncatesExcessDigits(t *testing.T) {
	d, err := Parse("1.1234567890123456789999")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.String(); got != "1.123456789012345678" {
		t.Errorf("got %q", got)
	}
}

func TestParseTrailingZerosTrimmed(t *testing.T) {
	d, err := Parse("1.500000000000000000")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.String(); got != "1.5" {
		t.Errorf("got %q", got)
	}
}

func TestZeroCanonical(t *testing.T) {
	for _, s := range []string{"0", "0.0", "-0", "-0.000"} {
		d, err := Parse(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := d.String(); got != "0" {
			t.Errorf("Parse(%q).String() = %q, want \"0\"", s, got)
		}
	}
}

func TestAddSubExact(t *testing.T) {
	a := MustParse("0.1")
	b := MustParse("0.2")
	if got := a.Add(b).String(); got != "0.3" {
		t.Errorf("0.1+0.2 = %s", got)
	}
}

func TestAddAssociative(t *testing.T) {
	a, b, c := MustParse("1.1"), MustParse("2.2"), MustParse("3.3")
	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))
	if !left.Equal(right) {
		t.Errorf("addition not associative: %s != %s", left, right)
	}
}

func TestDivRoundsTowardZero(t *testing.T) {
	a := MustParse("1")
	b := MustParse("3")
	got := a.Div(b) // 0.333...
	if got.GreaterThan(MustParse("0.333333333333333334")) {
		t.Errorf("Div did not truncate toward zero: %s", got)
	}
}

func TestCompare(t *testing.T) {
	if !MustParse("1").LessThan(MustParse("2")) {
		t.Error("1 < 2 failed")
	}
	if !MustParse("2").GreaterThanOrEqual(MustParse("2")) {
		t.Error("2 >= 2 failed")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("50000.25")
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var got Decimal
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(d) {
		t.Errorf("round-trip mismatch: %s != %s", got, d)
	}
}
