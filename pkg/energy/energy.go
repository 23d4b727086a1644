// Package energy provides the fixed-point kWh quantity used by time series
// and settlements. Quantities carry 3 decimals, banker's rounded at
// construction.
package energy

import "github.com/shopspring/decimal"

const scale = 3

// Quantity is an energy amount in kWh.
type Quantity struct {
	value decimal.Decimal
}

// New rounds to 3 decimals (banker's).
func New(value decimal.Decimal) Quantity {
	return Quantity{value: value.RoundBank(scale)}
}

// Zero is the additive identity.
func Zero() Quantity { return Quantity{value: decimal.Zero} }

func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value.Add(other.value)}
}

func (q Quantity) Sub(other Quantity) Quantity {
	return Quantity{value: q.value.Sub(other.value)}
}

func (q Quantity) Neg() Quantity { return Quantity{value: q.value.Neg()} }

func (q Quantity) IsZero() bool { return q.value.IsZero() }

func (q Quantity) Equal(other Quantity) bool { return q.value.Equal(other.value) }

// Decimal exposes the underlying value for rate multiplication.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

func (q Quantity) String() string { return q.value.StringFixed(scale) + " kWh" }
