// Package money defines the amount type used by the ledger.
//
// Amounts are stored as a signed count of minor currency units (paise,
// cents). Balance arithmetic is integer-only so that repeated splits and
// reversals never drift. Conversion to and from the decimal wire format
// goes through shopspring/decimal.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places carried by one minor unit.
const Scale = 2

// ErrInvalidAmount is returned when a value cannot be represented in minor units.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a signed quantity of minor currency units.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromMinor wraps a raw minor-unit count.
func FromMinor(units int64) Amount {
	return Amount(units)
}

// FromDecimal converts a decimal value such as 12.34 into minor units.
// Values with more than Scale fractional digits are rejected rather than rounded.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(Scale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d.String(), Scale)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, d.String())
	}
	return Amount(shifted.IntPart()), nil
}

// Parse converts a decimal string ("12.34", "12,34") into minor units.
func Parse(s string) (Amount, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return FromDecimal(d)
}

// RoundDecimal rounds a decimal quantity of major units to the nearest minor
// unit, half away from zero.
func RoundDecimal(d decimal.Decimal) Amount {
	return Amount(d.Shift(Scale).Round(0).IntPart())
}

// MinorUnits returns the raw minor-unit count.
func (a Amount) MinorUnits() int64 {
	return int64(a)
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String formats the amount with exactly Scale decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Add returns a+b, or an error if the result does not fit in an Amount.
func (a Amount) Add(b Amount) (Amount, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %s + %s is out of range", ErrInvalidAmount, a, b)
	}
	return a + b, nil
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return -a
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a > 0
}
