// Package domain contains tenant models and the hotel resolver contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization is one tenant of the platform.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Resolver maps a hotel to its owning organization.
type Resolver interface {
	ResolveOrg(ctx context.Context, hotelID snowflake.ID) (snowflake.ID, error)
}

var (
	ErrHotelNotFound = errors.New("hotel_not_found")
	ErrOrgNotFound   = errors.New("organization_not_found")
)
