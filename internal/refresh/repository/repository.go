// Package repository implements refresh unit persistence over gorm.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func New() refreshdomain.Repository {
	return &Repository{}
}

func (r *Repository) FindRecord(ctx context.Context, db *gorm.DB, sourceID snowflake.ID, provider string, w refreshdomain.Window) (*refreshdomain.Record, error) {
	var record refreshdomain.Record
	err := db.WithContext(ctx).
		Table("refresh_records").
		Select("refresh_records.*").
		Joins("JOIN refresh_metas ON refresh_metas.record_id = refresh_records.id").
		Where("refresh_metas.source_id = ? AND refresh_metas.provider = ? AND refresh_metas.check_in = ? AND refresh_metas.check_out = ?",
			sourceID, provider, w.CheckIn, w.CheckOut).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) CreatePending(ctx context.Context, db *gorm.DB, record *refreshdomain.Record, meta *refreshdomain.Meta) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record.Status = refreshdomain.StatusPending
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		meta.RecordID = record.ID
		result := tx.Exec(
			`INSERT INTO refresh_metas (id, record_id, source_id, provider, check_in, check_out, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (source_id, provider, check_in, check_out) DO NOTHING`,
			meta.ID,
			meta.RecordID,
			meta.SourceID,
			meta.Provider,
			meta.CheckIn,
			meta.CheckOut,
			time.Now().UTC(),
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race; rolling back drops the orphan record too.
			return refreshdomain.ErrUnitExists
		}
		return nil
	})
}

func (r *Repository) LatestPoint(ctx context.Context, db *gorm.DB, recordID snowflake.ID, provider string, w refreshdomain.Window) (*refreshdomain.Point, error) {
	var point refreshdomain.Point
	err := db.WithContext(ctx).
		Where("record_id = ? AND provider = ? AND check_in = ? AND check_out = ?",
			recordID, provider, w.CheckIn, w.CheckOut).
		Order("updated_at DESC").
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func (r *Repository) ListPoints(ctx context.Context, db *gorm.DB, recordID snowflake.ID, provider string, w refreshdomain.Window) ([]refreshdomain.Point, error) {
	var points []refreshdomain.Point
	err := db.WithContext(ctx).
		Where("record_id = ? AND provider = ? AND check_in = ? AND check_out = ?",
			recordID, provider, w.CheckIn, w.CheckOut).
		Order("id ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *Repository) AcquireProcessing(ctx context.Context, db *gorm.DB, recordID snowflake.ID, ttl time.Duration, now time.Time) error {
	stuckBefore := now.Add(-ttl)
	result := db.WithContext(ctx).Exec(
		`UPDATE refresh_records
		 SET status = ?, updated_at = ?
		 WHERE id = ?
		   AND (status IN (?, ?, ?, ?) OR (status = ? AND updated_at < ?))`,
		refreshdomain.StatusProcessing,
		now,
		recordID,
		refreshdomain.StatusPending,
		refreshdomain.StatusFailed,
		refreshdomain.StatusSaved,
		refreshdomain.StatusPartiallySaved,
		refreshdomain.StatusProcessing,
		stuckBefore,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return refreshdomain.ErrRecordBusy
	}
	return nil
}

func (r *Repository) MarkOutcome(ctx context.Context, db *gorm.DB, recordID snowflake.ID, status string, message *string, now time.Time) error {
	switch status {
	case refreshdomain.StatusSaved, refreshdomain.StatusPartiallySaved, refreshdomain.StatusFailed:
	default:
		return refreshdomain.ErrInvalidTransition
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE refresh_records
		 SET status = ?, last_error = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		status,
		message,
		now,
		recordID,
		refreshdomain.StatusProcessing,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return refreshdomain.ErrInvalidTransition
	}
	return nil
}

func (r *Repository) MarkSaved(ctx context.Context, db *gorm.DB, recordID snowflake.ID, now time.Time) error {
	// Idempotent; does not touch records held in processing.
	return db.WithContext(ctx).Exec(
		`UPDATE refresh_records
		 SET status = ?, last_error = NULL, updated_at = ?
		 WHERE id = ? AND status NOT IN (?, ?)`,
		refreshdomain.StatusSaved,
		now,
		recordID,
		refreshdomain.StatusSaved,
		refreshdomain.StatusProcessing,
	).Error
}

func (r *Repository) ReplacePoints(ctx context.Context, db *gorm.DB, recordID snowflake.ID, provider string, w refreshdomain.Window, points []refreshdomain.Point) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("record_id = ? AND provider = ? AND check_in = ? AND check_out = ?",
				recordID, provider, w.CheckIn, w.CheckOut).
			Delete(&refreshdomain.Point{}).Error; err != nil {
			return err
		}
		if len(points) == 0 {
			return nil
		}
		return tx.Create(&points).Error
	})
}
