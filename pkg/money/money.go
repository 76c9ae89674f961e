// Package money provides Amount, the fixed-precision decimal used for coin
// amounts, prices and wallet balances. Values are stored as numeric(12,2)
// and always serialized rounded to two decimals, half away from zero.
package money

import (
	"database/sql/driver"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

// Scale is the number of fractional digits kept for display.
const Scale = 2

// numeric(12,2) leaves ten integer digits.
var upperBound = decimal.New(1, 10)

var (
	ErrNotNumeric  = apperr.New(apperr.Validation, "not_numeric", "value must be a number")
	ErrNotPositive = apperr.New(apperr.Validation, "not_positive", "value must be greater than 0")
	ErrNegative    = apperr.New(apperr.Validation, "negative", "value must not be negative")
	ErrOutOfRange  = apperr.New(apperr.Validation, "out_of_range", "value exceeds the storable range")
)

// Amount is a non-negative decimal quantity.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{d: decimal.Zero}

// FromInt returns an Amount of whole units.
func FromInt(v int64) Amount { return Amount{d: decimal.NewFromInt(v)} }

// FromDecimal wraps d without validation.
func FromDecimal(d decimal.Decimal) Amount { return Amount{d: d} }

// Parse reads a strictly positive amount, the rule for topup inputs. The
// value must stay positive once stored at two decimals, so 0.004 is rejected.
func Parse(raw string) (Amount, error) {
	d, err := parse(raw)
	if err != nil {
		return Amount{}, err
	}
	if d.Sign() <= 0 || d.Round(Scale).Sign() <= 0 {
		return Amount{}, ErrNotPositive
	}
	return Amount{d: d}, nil
}

// ParseNonNegative reads an amount that may be zero, the rule for balances.
// Negative input is rejected, never clamped.
func ParseNonNegative(raw string) (Amount, error) {
	d, err := parse(raw)
	if err != nil {
		return Amount{}, err
	}
	if d.Sign() < 0 {
		return Amount{}, ErrNegative
	}
	return Amount{d: d}, nil
}

func parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotNumeric.Wrap(err)
	}
	if d.Abs().Cmp(upperBound) >= 0 {
		return decimal.Zero, ErrOutOfRange
	}
	return d, nil
}

// MustParse parses a non-negative literal and panics on failure.
func MustParse(raw string) Amount {
	a, err := ParseNonNegative(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// Round2 rounds half away from zero to two decimals (12.345 -> 12.35).
func (a Amount) Round2() Amount { return Amount{d: a.d.Round(Scale)} }

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) IsZero() bool     { return a.d.Sign() == 0 }
func (a Amount) IsPositive() bool { return a.d.Sign() > 0 }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

// String renders the display form with exactly two decimals.
func (a Amount) String() string { return a.d.StringFixed(Scale) }

// MarshalJSON writes a JSON number rounded for display.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.StringFixed(Scale)), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*a = Zero
		return nil
	}
	v, err := ParseNonNegative(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Scan implements sql.Scanner for numeric columns.
func (a *Amount) Scan(value interface{}) error {
	return a.d.Scan(value)
}

// Value implements driver.Valuer, keeping full stored precision.
func (a Amount) Value() (driver.Value, error) {
	return a.d.Value()
}
