package money

import (
	"testing"

	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDKKRounding(t *testing.T) {
	m := DKK(decimal.RequireFromString("100.555"))
	assert.Equal(t, "100.56 DKK", m.String())

	// Banker's rounding: ties go to even.
	assert.Equal(t, "100.56", DKK(decimal.RequireFromString("100.565")).Amount.StringFixed(2))
	assert.Equal(t, "100.12", DKK(decimal.RequireFromString("100.125")).Amount.StringFixed(2))
}

func TestCurrencyMismatch(t *testing.T) {
	dkk := DKK(decimal.NewFromInt(100))
	eur := New(decimal.NewFromInt(100), "EUR")

	_, err := dkk.Add(eur)
	assert.True(t, apperr.IsValidation(err))

	_, err = dkk.Sub(eur)
	assert.True(t, apperr.IsValidation(err))
}

func TestArithmetic(t *testing.T) {
	a := DKK(decimal.RequireFromString("10.10"))
	b := DKK(decimal.RequireFromString("0.90"))

	sum, err := a.Add(b)
	assert.NoError(t, err)
	assert.Equal(t, "11.00 DKK", sum.String())

	diff, err := a.Sub(b)
	assert.NoError(t, err)
	assert.Equal(t, "9.20 DKK", diff.String())

	assert.Equal(t, "-10.10 DKK", a.Neg().String())
	assert.True(t, Zero("DKK").IsZero())
}
