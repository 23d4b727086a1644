package marketid

import (
	"github.com/nordlux/elcore/pkg/apperr"
)

// Cpr is a Danish personal identifier (10 digits). Treated as sensitive;
// logs and projections must use ToMasked.
type Cpr string

func NewCpr(value string) (Cpr, error) {
	if len(value) != 10 || !allDigits(value) {
		return "", apperr.New(apperr.ErrValidation, "cpr must be 10 digits")
	}
	return Cpr(value), nil
}

// ToMasked exposes only the birth-date prefix.
func (c Cpr) ToMasked() string {
	if len(c) != 10 {
		return "xxxxxxxxxx"
	}
	return string(c[:6]) + "xxxx"
}

func (c Cpr) String() string { return string(c) }

// Cvr is a Danish company identifier (8 digits).
type Cvr string

func NewCvr(value string) (Cvr, error) {
	if len(value) != 8 || !allDigits(value) {
		return "", apperr.New(apperr.ErrValidation, "cvr must be 8 digits")
	}
	return Cvr(value), nil
}

func (c Cvr) String() string { return string(c) }
