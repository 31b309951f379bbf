package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository owns refresh record, meta and point persistence. Status
// transitions are compare-and-set updates; the processing transition is the
// per-unit serialization point.
type Repository interface {
	// FindRecord locates the record whose meta matches (source, provider,
	// window) exactly. Returns nil when no unit exists yet.
	FindRecord(ctx context.Context, db *gorm.DB, sourceID snowflake.ID, provider string, w Window) (*Record, error)

	// CreatePending inserts a record and its meta in one transaction.
	// Returns ErrUnitExists when another caller created the unit first.
	CreatePending(ctx context.Context, db *gorm.DB, record *Record, meta *Meta) error

	// LatestPoint returns the most recently updated point for the unit, or
	// nil when the record has no points yet.
	LatestPoint(ctx context.Context, db *gorm.DB, recordID snowflake.ID, provider string, w Window) (*Point, error)

	// ListPoints returns the stored points for the unit.
	ListPoints(ctx context.Context, db *gorm.DB, recordID snowflake.ID, provider string, w Window) ([]Point, error)

	// AcquireProcessing flips the record to processing. Acquirable from any
	// non-processing status, and from processing itself once the record has
	// been stuck longer than ttl. Returns ErrRecordBusy when another
	// attempt holds the unit.
	AcquireProcessing(ctx context.Context, db *gorm.DB, recordID snowflake.ID, ttl time.Duration, now time.Time) error

	// MarkOutcome moves a processing record to saved, partially_saved or
	// failed. Returns ErrInvalidTransition when the record is not
	// processing.
	MarkOutcome(ctx context.Context, db *gorm.DB, recordID snowflake.ID, status string, message *string, now time.Time) error

	// MarkSaved idempotently flips a non-processing record to saved, for
	// the fresh-skip path.
	MarkSaved(ctx context.Context, db *gorm.DB, recordID snowflake.ID, now time.Time) error

	// ReplacePoints deletes the unit's stored points and inserts the new
	// set in one transaction.
	ReplacePoints(ctx context.Context, db *gorm.DB, recordID snowflake.ID, provider string, w Window, points []Point) error
}
