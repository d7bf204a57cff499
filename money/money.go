/*
Package money provides the monetary amount type shared by every engine.

PURPOSE:
  A single-currency, decimal-backed amount. All balances, payments, costs,
  and valuations in the system are expressed as money.Money. Quantities of
  stocked goods use the same decimal arithmetic (see inventory package).

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere - no floating-point money
  2. Value semantics: Money is an immutable value, every operation returns
     a new Money
  3. No currency tag: the system is single-currency by design

USAGE:
  total := money.FromFloat(100)
  paid := money.FromFloat(80)
  remaining := total.Sub(paid) // 20
*/
package money

import "github.com/shopspring/decimal"

// Money is a signed monetary amount.
type Money struct {
	value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// FromDecimal wraps a decimal as Money.
func FromDecimal(d decimal.Decimal) Money {
	return Money{value: d}
}

// FromFloat converts a float to Money. Use only at API/config boundaries.
func FromFloat(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

// FromInt converts an integer to Money.
func FromInt(i int64) Money {
	return Money{value: decimal.NewFromInt(i)}
}

// Parse parses a decimal string into Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// MustParse parses a decimal string, returning Zero on failure.
func MustParse(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero
	}
	return Money{value: d}
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) String() string           { return m.value.String() }

// Float64 returns the float approximation. For display only.
func (m Money) Float64() float64 {
	f, _ := m.value.Float64()
	return f
}

func (m Money) Add(o Money) Money          { return Money{value: m.value.Add(o.value)} }
func (m Money) Sub(o Money) Money          { return Money{value: m.value.Sub(o.value)} }
func (m Money) Mul(d decimal.Decimal) Money { return Money{value: m.value.Mul(d)} }
func (m Money) Div(d decimal.Decimal) Money { return Money{value: m.value.Div(d)} }
func (m Money) Neg() Money                 { return Money{value: m.value.Neg()} }

func (m Money) IsZero() bool     { return m.value.IsZero() }
func (m Money) IsNegative() bool { return m.value.IsNegative() }
func (m Money) IsPositive() bool { return m.value.IsPositive() }

func (m Money) Equal(o Money) bool        { return m.value.Equal(o.value) }
func (m Money) GreaterThan(o Money) bool  { return m.value.GreaterThan(o.value) }
func (m Money) LessThan(o Money) bool     { return m.value.LessThan(o.value) }
func (m Money) GreaterOrEqual(o Money) bool { return m.value.GreaterThanOrEqual(o.value) }
func (m Money) LessOrEqual(o Money) bool  { return m.value.LessThanOrEqual(o.value) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// Sum folds a slice of amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
