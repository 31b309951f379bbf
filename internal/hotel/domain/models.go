// Package domain contains hotel and room-type catalog models.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// DefaultRoomCapacity is assumed for room types first seen in provider data.
const DefaultRoomCapacity = 2

// Hotel is one property of a tenant.
type Hotel struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null" json:"org_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	City      string       `gorm:"type:text" json:"city"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Hotel) TableName() string { return "hotels" }

// RoomType is a catalog entry keyed by (hotel, name). Shared across all
// sources of a hotel; the refresh pipeline creates but never deletes them.
type RoomType struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	HotelID   snowflake.ID `gorm:"not null;uniqueIndex:uq_room_types_hotel_name" json:"hotel_id"`
	Name      string       `gorm:"type:text;not null;uniqueIndex:uq_room_types_hotel_name" json:"name"`
	Capacity  int          `gorm:"not null;default:2" json:"capacity"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (RoomType) TableName() string { return "room_types" }

// Repository provides room-type catalog access.
type Repository interface {
	FindOrCreateRoomType(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, name string) (*RoomType, error)
	FindHotel(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Hotel, error)
}

var ErrInvalidRoomName = errors.New("invalid_room_name")
