package service

import (
	"context"
	"errors"

	"github.com/staypoint/staypoint/internal/fetch"
	hoteldomain "github.com/staypoint/staypoint/internal/hotel/domain"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReplaceObservations validates fetched observations and replaces the
// unit's stored points with the validated set. Room types are resolved or
// created against the hotel catalog inside the same transaction. Malformed
// observations are dropped and counted, never escalated; only storage
// failures and an empty validated set produce errors. With no valid points
// the stored set is left untouched.
func (s *Service) ReplaceObservations(
	ctx context.Context,
	record *refreshdomain.Record,
	src sourcedomain.Source,
	w refreshdomain.Window,
	observations []refreshdomain.Observation,
) ([]refreshdomain.Point, int, error) {
	dropped := 0
	var points []refreshdomain.Point

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dropped = 0
		points = nil
		now := s.clk.Now()

		for _, obs := range observations {
			rate, err := fetch.ParseRate(obs.RateText)
			if err != nil {
				s.log.Debug("dropping observation",
					zap.String("room", obs.RoomLabel),
					zap.String("rate_text", obs.RateText),
					zap.Error(err),
				)
				dropped++
				continue
			}

			roomType, err := s.rooms.FindOrCreateRoomType(ctx, tx, src.HotelID, obs.RoomLabel)
			if err != nil {
				if errors.Is(err, hoteldomain.ErrInvalidRoomName) {
					dropped++
					continue
				}
				return err
			}

			points = append(points, refreshdomain.Point{
				ID:         s.genID.Generate(),
				OrgID:      record.OrgID,
				RecordID:   record.ID,
				RoomTypeID: roomType.ID,
				Provider:   src.Provider,
				CheckIn:    w.CheckIn,
				CheckOut:   w.CheckOut,
				RoomName:   roomType.Name,
				Rate:       rate,
				Valid:      true,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}

		if len(points) == 0 {
			return refreshdomain.ErrNoValidPoints
		}
		return s.repo.ReplacePoints(ctx, tx, record.ID, src.Provider, w, points)
	})
	if err != nil {
		return nil, dropped, err
	}
	return points, dropped, nil
}
