// Package repository implements source registry persistence.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func New() sourcedomain.Repository {
	return &Repository{}
}

// ListActive returns active sources ordered by id, which for snowflake ids
// is registration order.
func (r *Repository) ListActive(ctx context.Context, db *gorm.DB) ([]sourcedomain.Source, error) {
	var sources []sourcedomain.Source
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, src *sourcedomain.Source) error {
	if src == nil || src.OrgID == 0 || src.HotelID == 0 {
		return sourcedomain.ErrInvalidSource
	}
	if strings.TrimSpace(src.Provider) == "" || strings.TrimSpace(src.Locator) == "" {
		return sourcedomain.ErrInvalidSource
	}
	return db.WithContext(ctx).Create(src).Error
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sourcedomain.Source, error) {
	var src sourcedomain.Source
	err := db.WithContext(ctx).First(&src, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sourcedomain.ErrSourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// UpdateLocator applies a locator correction; everything else on a source is
// immutable after registration.
func (r *Repository) UpdateLocator(ctx context.Context, db *gorm.DB, id snowflake.ID, locator string) error {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return sourcedomain.ErrInvalidSource
	}
	result := db.WithContext(ctx).
		Model(&sourcedomain.Source{}).
		Where("id = ?", id).
		Update("locator", locator)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sourcedomain.ErrSourceNotFound
	}
	return nil
}
