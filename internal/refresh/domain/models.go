// Package domain contains the refresh unit lifecycle models.
//
// One Record exists per (org, provider, source, window); the window itself
// lives on the Meta row. Points are the extracted observations for the
// record's window and are replaced wholesale on every successful refetch.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending        = "pending"
	StatusProcessing     = "processing"
	StatusSaved          = "saved"
	StatusPartiallySaved = "partially_saved"
	StatusFailed         = "failed"
)

// DefaultTTL is how long extracted points stay fresh before a refetch.
const DefaultTTL = 6 * time.Hour

// Record tracks the lifecycle of one refresh unit. Created on first
// encounter, mutated only through status transitions, never deleted by the
// pipeline.
type Record struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null" json:"org_id"`
	Provider  string       `gorm:"type:text;not null" json:"provider"`
	Status    string       `gorm:"type:text;not null;default:pending" json:"status"`
	LastError *string      `gorm:"type:text" json:"-"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "refresh_records" }

// Meta pins a Record to its source and stay window. Immutable after
// creation; the unique index over (source, provider, window) is what makes
// a refresh unit addressable.
type Meta struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	RecordID  snowflake.ID `gorm:"not null;uniqueIndex" json:"record_id"`
	SourceID  snowflake.ID `gorm:"not null;uniqueIndex:uq_refresh_metas_unit" json:"source_id"`
	Provider  string       `gorm:"type:text;not null;uniqueIndex:uq_refresh_metas_unit" json:"provider"`
	CheckIn   time.Time    `gorm:"type:date;not null;uniqueIndex:uq_refresh_metas_unit" json:"check_in"`
	CheckOut  time.Time    `gorm:"type:date;not null;uniqueIndex:uq_refresh_metas_unit" json:"check_out"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Meta) TableName() string { return "refresh_metas" }

// Point is one extracted rate observation. Never mutated in place; a
// refetch deletes and recreates the set for the window.
type Point struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null" json:"org_id"`
	RecordID   snowflake.ID `gorm:"not null" json:"record_id"`
	RoomTypeID snowflake.ID `gorm:"not null" json:"room_type_id"`
	Provider   string       `gorm:"type:text;not null" json:"provider"`
	CheckIn    time.Time    `gorm:"type:date;not null" json:"check_in"`
	CheckOut   time.Time    `gorm:"type:date;not null" json:"check_out"`
	RoomName   string       `gorm:"type:text;not null" json:"room_name"`
	Rate       float64      `gorm:"not null" json:"rate"`
	Valid      bool         `gorm:"not null;default:true" json:"valid"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Point) TableName() string { return "rate_points" }

// Observation is one fetched (room, rate text) pair before validation.
type Observation struct {
	RoomLabel string
	RateText  string
}

var (
	ErrRecordNotFound    = errors.New("refresh_record_not_found")
	ErrRecordBusy        = errors.New("refresh_record_busy")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrUnitExists        = errors.New("refresh_unit_exists")
	ErrNoValidPoints     = errors.New("no_valid_points")
)
