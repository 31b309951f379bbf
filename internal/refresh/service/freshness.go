package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
)

// Freshness is the two-outcome answer of the skip-or-refetch decision.
type Freshness struct {
	Fresh  bool
	Record *refreshdomain.Record
	Points []refreshdomain.Point
}

// CheckFreshness reports whether the stored points for (source, provider,
// window) are still within ttl. Purely a lookup; status flips belong to the
// caller. A record without points is always stale.
func (s *Service) CheckFreshness(ctx context.Context, sourceID snowflake.ID, provider string, w refreshdomain.Window, ttl time.Duration) (Freshness, error) {
	record, err := s.repo.FindRecord(ctx, s.db, sourceID, provider, w)
	if err != nil {
		return Freshness{}, err
	}
	if record == nil {
		return Freshness{}, nil
	}

	latest, err := s.repo.LatestPoint(ctx, s.db, record.ID, provider, w)
	if err != nil {
		return Freshness{Record: record}, err
	}
	if latest == nil {
		return Freshness{Record: record}, nil
	}
	if s.clk.Now().Sub(latest.UpdatedAt) >= ttl {
		return Freshness{Record: record}, nil
	}

	points, err := s.repo.ListPoints(ctx, s.db, record.ID, provider, w)
	if err != nil {
		return Freshness{Record: record}, err
	}
	return Freshness{Fresh: true, Record: record, Points: points}, nil
}
