package marketid

import (
	"github.com/nordlux/elcore/pkg/apperr"
)

// GlnNumber is a 13-digit EAN-13 global location number identifying a
// market participant.
type GlnNumber string

// NewGln validates length, digits and the EAN-13 check digit.
func NewGln(value string) (GlnNumber, error) {
	if len(value) != 13 {
		return "", apperr.New(apperr.ErrValidation, "gln must be 13 digits, got %d", len(value))
	}
	if !allDigits(value) {
		return "", apperr.New(apperr.ErrValidation, "gln must contain only digits")
	}
	if !validEan13(value) {
		return "", apperr.New(apperr.ErrValidation, "gln %s has invalid check digit", value)
	}
	return GlnNumber(value), nil
}

// GlnFromTrusted wraps a GLN that has already been validated upstream,
// skipping the checksum. Length and digits are still enforced.
func GlnFromTrusted(value string) (GlnNumber, error) {
	if len(value) != 13 || !allDigits(value) {
		return "", apperr.New(apperr.ErrValidation, "gln must be 13 digits")
	}
	return GlnNumber(value), nil
}

func (g GlnNumber) String() string { return string(g) }

// validEan13 checks the GS1 mod-10 check digit: digits 1..12 weighted
// 1,3 alternating, check = (10 - sum mod 10) mod 10.
func validEan13(value string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(value[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(value[12]-'0')
}
