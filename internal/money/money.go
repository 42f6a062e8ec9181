// Package money rounds, formats and parses Rupiah amounts.
//
// Amounts travel through the application as float64 (whole rupiah, no minor
// unit). Rounding only happens at display time or when two amounts are compared,
// never inside the split arithmetic.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the smallest displayed amount (one rupiah).
const Unit = 1.0

var (
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrInvalidAmount  = errors.New("amount is not a number")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Round rounds amount to the display unit, half away from zero.
// Non-finite input is returned as 0.
func Round(amount float64) float64 {
	if !finite(amount) {
		return 0
	}
	return decimal.NewFromFloat(amount).Round(0).InexactFloat64()
}

// Reconciles reports whether two amounts agree within one display unit.
func Reconciles(a, b float64) bool {
	return math.Abs(a-b) < Unit
}

// Format renders amount the way the id-ID locale formats IDR,
// e.g. 115500 -> "Rp 115.500".
func Format(amount float64) string {
	if !finite(amount) {
		amount = 0
	}
	d := decimal.NewFromFloat(amount).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "Rp " + groupThousands(d.String())
}

// ParseAmount parses user input into a non-negative amount.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	return d.InexactFloat64(), nil
}

// ParseOverride parses a surcharge override typed by the user. Empty,
// non-numeric and negative input all mean "no override".
func ParseOverride(s string) (float64, bool) {
	amount, err := ParseAmount(s)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
