// Package repository implements hotel and room-type persistence.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	hoteldomain "github.com/staypoint/staypoint/internal/hotel/domain"
	"gorm.io/gorm"
)

type Repository struct {
	genID *snowflake.Node
}

func New(genID *snowflake.Node) hoteldomain.Repository {
	return &Repository{genID: genID}
}

// FindHotel loads a hotel by id, returning nil when absent.
func (r *Repository) FindHotel(ctx context.Context, db *gorm.DB, id snowflake.ID) (*hoteldomain.Hotel, error) {
	var hotel hoteldomain.Hotel
	err := db.WithContext(ctx).First(&hotel, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

// FindOrCreateRoomType resolves a catalog entry by exact name, creating it
// with the default capacity on first sighting. Safe under concurrent
// creation: the insert is a no-op on conflict and the row is re-read.
func (r *Repository) FindOrCreateRoomType(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, name string) (*hoteldomain.RoomType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, hoteldomain.ErrInvalidRoomName
	}

	existing, err := r.findRoomType(ctx, db, hotelID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := db.WithContext(ctx).Exec(
		`INSERT INTO room_types (id, hotel_id, name, capacity, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (hotel_id, name) DO NOTHING`,
		r.genID.Generate(),
		hotelID,
		name,
		hoteldomain.DefaultRoomCapacity,
		time.Now().UTC(),
	).Error; err != nil {
		return nil, err
	}

	created, err := r.findRoomType(ctx, db, hotelID, name)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errors.New("room_type_not_found")
	}
	return created, nil
}

func (r *Repository) findRoomType(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, name string) (*hoteldomain.RoomType, error) {
	var roomType hoteldomain.RoomType
	err := db.WithContext(ctx).
		Where("hotel_id = ? AND name = ?", hotelID, name).
		First(&roomType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &roomType, nil
}
