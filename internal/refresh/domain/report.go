package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Unit result statuses reported to the caller of a cycle.
const (
	UnitSkipped = "skipped"
	UnitSaved   = "saved"
	UnitFailed  = "failed"
)

// UnitResult is the outcome of one (source, window) refresh attempt.
type UnitResult struct {
	SourceID snowflake.ID `json:"source_id"`
	Window   Window       `json:"window"`
	Status   string       `json:"status"`
	Points   []Point      `json:"points,omitempty"`
	Error    string       `json:"error,omitempty"`
	Fetched  bool         `json:"fetched"`
}

// BatchReport enumerates every attempted unit of a cycle in order. Partial
// failures never suppress other units' results.
type BatchReport struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Units      []UnitResult `json:"units"`
	Saved      int          `json:"saved"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
}

// Tally recomputes the summary counters from the unit results.
func (r *BatchReport) Tally() {
	r.Saved, r.Skipped, r.Failed = 0, 0, 0
	for _, unit := range r.Units {
		switch unit.Status {
		case UnitSaved:
			r.Saved++
		case UnitFailed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
}
