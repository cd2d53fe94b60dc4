// Package xdecimal is the canonical seam between the pack's own
// arbitrary-precision arithmetic library and the fixed 18-fractional-digit
// contract the trading core requires: exact add/sub, round-toward-zero
// mul/div at the 18th digit, a single canonical zero, and a parse/render
// pair that round-trips bit-exactly.
package xdecimal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the fixed number of fractional decimal digits every Decimal
// carries after arithmetic. Mul and Div truncate toward zero at this digit;
// Add and Sub never need to since both operands are already at or below it.
const Scale = 18

// Decimal is a signed fixed-point value with exactly Scale fractional digits.
type Decimal struct {
	d decimal.Decimal
}

// Zero is the single canonical representation of zero.
var Zero = Decimal{d: decimal.Zero}

// FromInt builds a Decimal from an integer.
func FromInt(i int64) Decimal {
	return Decimal{d: decimal.NewFromInt(i)}
}

// FromFloat builds a Decimal from a float64, truncated to Scale digits.
// Intended for literals in tests and defaults, not for values that came
// off the wire (use Parse for those).
func FromFloat(f float64) Decimal {
	return Decimal{d: decimal.NewFromFloat(f).Truncate(Scale)}
}

// Parse parses a string of the form [sign]integer[.fraction], fraction
// truncated beyond Scale digits. Returns a VALIDATION-kind error for
// malformed input.
func Parse(s string) (Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{}, fmt.Errorf("xdecimal: parse %q: %w", s, err)
	}
	return Decimal{d: d.Truncate(Scale)}, nil
}

// MustParse panics on a parse error; for use with known-good literals.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the canonical form: no trailing fractional zeros, no
// decimal point when the fractional part is zero, no leading '+', and a
// single "0" for zero (never "-0").
func (a Decimal) String() string {
	t := a.d.Truncate(Scale)
	if t.IsZero() {
		return "0"
	}
	s := t.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// MarshalJSON renders the canonical string form, quoted.
func (a Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses the canonical string form (quoted or bare).
func (a *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Add is exact: both operands already carry at most Scale fractional digits.
func (a Decimal) Add(b Decimal) Decimal { return Decimal{d: a.d.Add(b.d)} }

// Sub is exact, for the same reason Add is.
func (a Decimal) Sub(b Decimal) Decimal { return Decimal{d: a.d.Sub(b.d)} }

// Mul rounds toward zero at the Scale-th fractional digit.
func (a Decimal) Mul(b Decimal) Decimal { return Decimal{d: a.d.Mul(b.d).Truncate(Scale)} }

// Div rounds toward zero at the Scale-th fractional digit. Division by
// zero panics, matching shopspring/decimal's own contract; callers that
// cannot guarantee a non-zero divisor must check IsZero first.
func (a Decimal) Div(b Decimal) Decimal {
	q, _ := a.d.QuoRem(b.d, Scale)
	return Decimal{d: q}
}

// Neg returns -a.
func (a Decimal) Neg() Decimal { return Decimal{d: a.d.Neg()} }

// Abs returns |a|.
func (a Decimal) Abs() Decimal { return Decimal{d: a.d.Abs()} }

func (a Decimal) IsZero() bool     { return a.d.IsZero() }
func (a Decimal) IsNegative() bool { return a.d.Sign() < 0 }
func (a Decimal) IsPositive() bool { return a.d.Sign() > 0 }

func (a Decimal) Equal(b Decimal) bool              { return a.d.Equal(b.d) }
func (a Decimal) GreaterThan(b Decimal) bool         { return a.d.GreaterThan(b.d) }
func (a Decimal) GreaterThanOrEqual(b Decimal) bool  { return a.d.GreaterThanOrEqual(b.d) }
func (a Decimal) LessThan(b Decimal) bool            { return a.d.LessThan(b.d) }
func (a Decimal) LessThanOrEqual(b Decimal) bool     { return a.d.LessThanOrEqual(b.d) }

// Cmp returns -1, 0, or 1.
func (a Decimal) Cmp(b Decimal) int { return a.d.Cmp(b.d) }

// InexactFloat64 is for display/telemetry only, never for accounting.
func (a Decimal) InexactFloat64() float64 { return a.d.InexactFloat64() }
