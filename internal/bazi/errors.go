package bazi

import "errors"

var (
	// ErrInvalidGender is returned when a gender code is neither male nor female.
	ErrInvalidGender = errors.New("invalid gender")
	// ErrDateOutOfRange is returned for dates outside the supported span.
	ErrDateOutOfRange = errors.New("date out of supported range")
	// ErrUnknownTenGod indicates a stem pair that cannot be classified. It
	// implies corrupt relation tables, not bad input.
	ErrUnknownTenGod = errors.New("unclassifiable ten-god relation")
)
