package fetch

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoRate       = errors.New("rate_not_numeric")
	ErrNegativeRate = errors.New("rate_negative")
)

var ratePattern = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// ParseRate extracts a non-negative nightly rate from provider price text.
// Providers decorate prices freely ("$199.00 nightly", "USD 1,299"), so the
// first numeric token wins after currency noise is stripped.
func ParseRate(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrNoRate
	}

	match := ratePattern.FindString(text)
	if match == "" {
		return 0, ErrNoRate
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, ErrNoRate
	}
	if value < 0 {
		return 0, ErrNegativeRate
	}
	return value, nil
}
