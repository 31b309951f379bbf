// Package service implements the rate refresh pipeline: freshness checks,
// point replacement and the batch orchestrator.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/staypoint/staypoint/internal/clock"
	"github.com/staypoint/staypoint/internal/config"
	"github.com/staypoint/staypoint/internal/fetch"
	hoteldomain "github.com/staypoint/staypoint/internal/hotel/domain"
	"github.com/staypoint/staypoint/internal/observability/metrics"
	organizationdomain "github.com/staypoint/staypoint/internal/organization/domain"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clk      clock.Clock
	repo     refreshdomain.Repository
	sources  sourcedomain.Repository
	rooms    hoteldomain.Repository
	resolver organizationdomain.Resolver
	fetcher  fetch.Client
	metrics  *metrics.RefreshMetrics
	cfg      config.RefreshConfig

	reportMu   sync.RWMutex
	lastReport *refreshdomain.BatchReport
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     refreshdomain.Repository
	Sources  sourcedomain.Repository
	Rooms    hoteldomain.Repository
	Resolver organizationdomain.Resolver
	Fetcher  fetch.Client
	Config   config.RefreshConfig
}

func New(p Params) *Service {
	cfg := p.Config
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 30
	}
	if cfg.TTL <= 0 {
		cfg.TTL = refreshdomain.DefaultTTL
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("refresh.service"),
		genID:    p.GenID,
		clk:      p.Clock,
		repo:     p.Repo,
		sources:  p.Sources,
		rooms:    p.Rooms,
		resolver: p.Resolver,
		fetcher:  p.Fetcher,
		metrics:  metrics.Refresh(),
		cfg:      cfg,
	}
}

// LastReport returns the report of the most recent completed cycle, or nil
// when no cycle has run in this process.
func (s *Service) LastReport() *refreshdomain.BatchReport {
	s.reportMu.RLock()
	defer s.reportMu.RUnlock()
	return s.lastReport
}

func (s *Service) setLastReport(report *refreshdomain.BatchReport) {
	s.reportMu.Lock()
	s.lastReport = report
	s.reportMu.Unlock()
}

// HotelRates returns stored rate points for a hotel, optionally bounded by
// check-in date.
func (s *Service) HotelRates(ctx context.Context, hotelID snowflake.ID, from, to time.Time) ([]refreshdomain.Point, error) {
	query := s.db.WithContext(ctx).
		Table("rate_points").
		Select("rate_points.*").
		Joins("JOIN room_types ON room_types.id = rate_points.room_type_id").
		Where("room_types.hotel_id = ?", hotelID)
	if !from.IsZero() {
		query = query.Where("rate_points.check_in >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("rate_points.check_in <= ?", to)
	}

	var points []refreshdomain.Point
	if err := query.Order("rate_points.check_in ASC, rate_points.id ASC").Find(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}
