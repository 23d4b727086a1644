// Package money provides fixed-point monetary values. All amounts are
// rounded to 2 decimals with banker's rounding at construction; arithmetic
// never touches float64.
package money

import (
	"fmt"

	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/shopspring/decimal"
)

const scale = 2

// Money is an amount in a single ISO currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New rounds the amount to 2 decimals (banker's).
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount.RoundBank(scale), Currency: currency}
}

// DKK is the common-case constructor.
func DKK(amount decimal.Decimal) Money {
	return New(amount, "DKK")
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add fails with CurrencyMismatch when currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperr.New(apperr.ErrValidation, "currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub fails with CurrencyMismatch when currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperr.New(apperr.ErrValidation, "currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(scale), m.Currency)
}

// RoundAmount applies the monetary rounding rule to a bare decimal.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(scale)
}
