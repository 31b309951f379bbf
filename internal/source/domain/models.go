// Package domain contains the tracked source registry models.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Source is one tracked (hotel, provider) listing. Administrators register
// sources; the refresh pipeline only reads them.
type Source struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null" json:"org_id"`
	HotelID   snowflake.ID `gorm:"not null" json:"hotel_id"`
	Provider  string       `gorm:"type:text;not null" json:"provider"`
	Locator   string       `gorm:"type:text;not null" json:"locator"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Source) TableName() string { return "sources" }

// Repository lists and registers tracked sources.
type Repository interface {
	// ListActive returns active sources in registration order.
	ListActive(ctx context.Context, db *gorm.DB) ([]Source, error)
	Insert(ctx context.Context, db *gorm.DB, src *Source) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Source, error)
	UpdateLocator(ctx context.Context, db *gorm.DB, id snowflake.ID, locator string) error
}

var (
	ErrSourceNotFound = errors.New("source_not_found")
	ErrInvalidSource  = errors.New("invalid_source")
)
