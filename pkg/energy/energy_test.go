package energy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuantityRounding(t *testing.T) {
	q := New(decimal.RequireFromString("1.2345"))
	assert.Equal(t, "1.234 kWh", q.String())

	q = New(decimal.RequireFromString("1.2335"))
	assert.Equal(t, "1.234 kWh", q.String())
}

func TestQuantityArithmetic(t *testing.T) {
	a := New(decimal.RequireFromString("10.500"))
	b := New(decimal.RequireFromString("0.250"))

	assert.Equal(t, "10.750 kWh", a.Add(b).String())
	assert.Equal(t, "10.250 kWh", a.Sub(b).String())
	assert.Equal(t, "-10.500 kWh", a.Neg().String())
	assert.True(t, Zero().IsZero())
}
