package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MissingSentinel marks an absent measurement in every DWD product.
const MissingSentinel = "-999"

var (
	// ErrMalformedValue is returned for tokens that are neither a number nor the sentinel.
	ErrMalformedValue = errors.New("malformed value")
	// ErrShortRow is returned for rows with fewer columns than the layout requires.
	ErrShortRow = errors.New("too few columns")
	// ErrInvalidStamp is returned for 10-minute timestamps that are not YYYYMMDDhhmm.
	ErrInvalidStamp = errors.New("invalid timestamp")
	// ErrInvalidPeriod is returned for reference periods without an integer start year.
	ErrInvalidPeriod = errors.New("invalid reference period")
	// ErrEmptyRecord marks a row whose measured values are all missing.
	// Such rows are discarded silently rather than reported as malformed.
	ErrEmptyRecord = errors.New("all values missing")
)

// ParseNumeric converts a DWD numeric token to a float. The decimal comma is
// replaced before parsing; the sentinel "-999" yields nil. Only plain decimal
// notation is accepted, so NaN, infinities, exponents and hex floats are
// malformed.
func ParseNumeric(raw string) (*float64, error) {
	token := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if token == MissingSentinel {
		return nil, nil
	}
	if !isDecimal(token) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedValue, raw)
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedValue, raw)
	}
	return &v, nil
}

// isDecimal reports whether s is an optionally signed decimal such as "-1",
// "0.5", ".5" or "3.".
func isDecimal(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return false
	}
	return isDigits(whole) && isDigits(frac)
}
