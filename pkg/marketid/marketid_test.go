package marketid

import (
	"testing"

	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/stretchr/testify/assert"
)

func TestNewGsrn(t *testing.T) {
	g, err := NewGsrn("571313180400013562")
	assert.NoError(t, err)
	assert.Equal(t, "571313180400013562", g.String())

	_, err = NewGsrn("57131318040001356")
	assert.True(t, apperr.IsValidation(err))

	_, err = NewGsrn("5713131804000135621")
	assert.True(t, apperr.IsValidation(err))

	_, err = NewGsrn("57131318040001356a")
	assert.True(t, apperr.IsValidation(err))
}

func TestNewGln(t *testing.T) {
	g, err := NewGln("5790000432752")
	assert.NoError(t, err)
	assert.Equal(t, "5790000432752", g.String())

	_, err = NewGln("5790000432753")
	assert.True(t, apperr.IsValidation(err), "wrong check digit must fail")

	_, err = NewGln("579000043275")
	assert.True(t, apperr.IsValidation(err))

	// FromTrusted skips the checksum but still requires digits.
	g, err = GlnFromTrusted("5790000432753")
	assert.NoError(t, err)
	assert.Equal(t, "5790000432753", g.String())
}

func TestCprMasking(t *testing.T) {
	c, err := NewCpr("0101901234")
	assert.NoError(t, err)
	assert.Equal(t, "010190xxxx", c.ToMasked())

	_, err = NewCpr("010190123")
	assert.True(t, apperr.IsValidation(err))
}

func TestCvr(t *testing.T) {
	_, err := NewCvr("12345678")
	assert.NoError(t, err)

	_, err = NewCvr("1234567")
	assert.True(t, apperr.IsValidation(err))
}
