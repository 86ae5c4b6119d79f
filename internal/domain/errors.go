package domain

import "errors"

// Sentinel errors returned by input validation. Handlers compare with
// errors.Is to map them onto 400 responses.
var (
	ErrInvalidDate   = errors.New("invalid calendar date")
	ErrInvalidGender = errors.New("invalid gender")
	ErrChartNotFound = errors.New("chart not found")
)
