// Package money provides the monetary value type used for balances and
// transaction amounts. Amounts carry exact decimal precision and render with
// two decimal places (centavos).
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be parsed as a decimal amount.
var ErrInvalidAmount = errors.New("amount is not a valid number")

// Money is an exact decimal monetary amount.
type Money struct {
	amount decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Parse parses a decimal string ("100", "40.5") into Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{amount: d}, nil
}

// MustParse parses a decimal string and panics on failure. Test helper.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromFloat converts a float64 into Money.
func FromFloat(f float64) Money {
	return Money{amount: decimal.NewFromFloat(f)}
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool {
	return m.amount.LessThan(o.amount)
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

// String renders the amount with two decimal places, e.g. "40.00".
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON encodes the amount with full precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.amount.MarshalJSON()
}

// UnmarshalJSON decodes a JSON number or string into the amount.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.amount.UnmarshalJSON(data)
}
