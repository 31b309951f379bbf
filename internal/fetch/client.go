// Package fetch defines the provider fetch boundary and its default
// HTML-scraping implementation. The refresh pipeline only ever sees the
// structured Result, never raw markup.
package fetch

import (
	"context"
	"errors"
	"time"
)

// Result is one provider observation for a stay window. A Result with
// OK=false, or with an empty RoomLabel or RateText, is a per-unit failure
// for the caller, never a fatal one.
type Result struct {
	RoomLabel    string `json:"room_label"`
	RateText     string `json:"rate_text"`
	OK           bool   `json:"ok"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Client retrieves rate data from an external provider.
type Client interface {
	Fetch(ctx context.Context, locator string, checkIn, checkOut time.Time) (Result, error)
}

var ErrEmptyLocator = errors.New("empty_locator")
