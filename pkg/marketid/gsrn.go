// Package marketid holds the Danish market identifier value types.
package marketid

import (
	"github.com/nordlux/elcore/pkg/apperr"
)

// Gsrn is the 18-digit global service relation number of a metering point.
type Gsrn string

// NewGsrn validates and wraps a GSRN. Exactly 18 decimal digits.
func NewGsrn(value string) (Gsrn, error) {
	if len(value) != 18 {
		return "", apperr.New(apperr.ErrValidation, "gsrn must be 18 digits, got %d", len(value))
	}
	if !allDigits(value) {
		return "", apperr.New(apperr.ErrValidation, "gsrn must contain only digits")
	}
	return Gsrn(value), nil
}

func (g Gsrn) String() string { return string(g) }

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
