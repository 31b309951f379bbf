package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/staypoint/staypoint/internal/observability/context"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	"go.uber.org/zap"
)

type unit struct {
	src sourcedomain.Source
	w   refreshdomain.Window
}

// RunCycle refreshes every active source across the stay-date horizon and
// returns the full per-unit report. The only fatal error is failing to read
// the source registry; everything else is recovered per unit.
func (s *Service) RunCycle(ctx context.Context) (*refreshdomain.BatchReport, error) {
	started := s.clk.Now()

	sources, err := s.sources.ListActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	windows := refreshdomain.Windows(started, s.cfg.HorizonDays)

	units := make([]unit, 0, len(sources)*len(windows))
	for _, src := range sources {
		for _, w := range windows {
			units = append(units, unit{src: src, w: w})
		}
	}

	report := &refreshdomain.BatchReport{
		StartedAt: started,
		Units:     make([]refreshdomain.UnitResult, len(units)),
	}
	if len(units) == 0 {
		report.FinishedAt = s.clk.Now()
		s.setLastReport(report)
		return report, nil
	}

	concurrency := s.cfg.Concurrency
	if concurrency > len(units) {
		concurrency = len(units)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				report.Units[idx] = s.processUnit(ctx, units[idx].src, units[idx].w)
			}
		}()
	}
	for idx := range units {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	report.FinishedAt = s.clk.Now()
	report.Tally()

	fetched := 0
	for _, result := range report.Units {
		s.metrics.ObserveUnit(result.Status)
		if result.Fetched {
			fetched++
		}
	}
	s.metrics.ObserveCycle(report.FinishedAt.Sub(started), len(units), fetched)

	s.setLastReport(report)
	s.log.Info("refresh cycle finished",
		zap.Int("units", len(units)),
		zap.Int("saved", report.Saved),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.FinishedAt.Sub(started)),
	)
	return report, nil
}

// processUnit runs one (source, window) refresh attempt. Any panic or error
// becomes a unit result; nothing escapes to the pool.
func (s *Service) processUnit(ctx context.Context, src sourcedomain.Source, w refreshdomain.Window) (result refreshdomain.UnitResult) {
	ctx = obscontext.WithUnit(ctx, src.ID.String(), w.Key())
	result = refreshdomain.UnitResult{SourceID: src.ID, Window: w, Status: refreshdomain.UnitFailed}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("refresh unit panicked",
				zap.String("source_id", src.ID.String()),
				zap.String("window", w.Key()),
				zap.Any("panic", r),
			)
			result.Status = refreshdomain.UnitFailed
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if _, err := s.resolver.ResolveOrg(ctx, src.HotelID); err != nil {
		result.Status = refreshdomain.UnitSkipped
		result.Error = err.Error()
		return result
	}

	fr, err := s.CheckFreshness(ctx, src.ID, src.Provider, w, s.cfg.TTL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if fr.Fresh {
		if err := s.repo.MarkSaved(ctx, s.db, fr.Record.ID, s.clk.Now()); err != nil {
			s.log.Warn("saved flip failed", zap.String("record_id", fr.Record.ID.String()), zap.Error(err))
		}
		result.Status = refreshdomain.UnitSkipped
		result.Points = fr.Points
		return result
	}

	record := fr.Record
	if record == nil {
		record, err = s.createUnit(ctx, src, w)
		if err != nil {
			result.Error = err.Error()
			return result
		}
	}

	if err := s.repo.AcquireProcessing(ctx, s.db, record.ID, s.cfg.TTL, s.clk.Now()); err != nil {
		if errors.Is(err, refreshdomain.ErrRecordBusy) {
			result.Status = refreshdomain.UnitSkipped
			result.Error = "refresh already in progress"
			return result
		}
		result.Error = err.Error()
		return result
	}

	fetchCtx := ctx
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	result.Fetched = true

	res, err := s.fetcher.Fetch(fetchCtx, src.Locator, w.CheckIn, w.CheckOut)
	if err != nil {
		message := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			message = "timeout"
		}
		s.failUnit(ctx, record.ID, &result, message)
		return result
	}
	if !res.OK {
		message := strings.TrimSpace(res.ErrorMessage)
		if message == "" {
			message = "provider fetch failed"
		}
		s.failUnit(ctx, record.ID, &result, message)
		return result
	}
	if strings.TrimSpace(res.RoomLabel) == "" {
		s.failUnit(ctx, record.ID, &result, "missing_room_label")
		return result
	}
	if strings.TrimSpace(res.RateText) == "" {
		s.failUnit(ctx, record.ID, &result, "missing_rate_text")
		return result
	}

	points, dropped, err := s.ReplaceObservations(ctx, record, src, w, []refreshdomain.Observation{
		{RoomLabel: res.RoomLabel, RateText: res.RateText},
	})
	if err != nil {
		if errors.Is(err, refreshdomain.ErrNoValidPoints) {
			s.failUnit(ctx, record.ID, &result, "no_valid_points")
		} else {
			s.failUnit(ctx, record.ID, &result, err.Error())
		}
		return result
	}

	status := refreshdomain.StatusSaved
	if dropped > 0 {
		status = refreshdomain.StatusPartiallySaved
	}
	if err := s.repo.MarkOutcome(ctx, s.db, record.ID, status, nil, s.clk.Now()); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Status = refreshdomain.UnitSaved
	result.Points = points
	s.metrics.ObservePoints(len(points))
	return result
}

func (s *Service) createUnit(ctx context.Context, src sourcedomain.Source, w refreshdomain.Window) (*refreshdomain.Record, error) {
	record := &refreshdomain.Record{
		ID:       s.genID.Generate(),
		OrgID:    src.OrgID,
		Provider: src.Provider,
	}
	meta := &refreshdomain.Meta{
		ID:       s.genID.Generate(),
		SourceID: src.ID,
		Provider: src.Provider,
		CheckIn:  w.CheckIn,
		CheckOut: w.CheckOut,
	}
	err := s.repo.CreatePending(ctx, s.db, record, meta)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, refreshdomain.ErrUnitExists) {
		return nil, err
	}

	// Another attempt created the unit first; use the winner's record.
	existing, err := s.repo.FindRecord(ctx, s.db, src.ID, src.Provider, w)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, refreshdomain.ErrRecordNotFound
	}
	return existing, nil
}

// failUnit records a failed outcome on both the record and the unit result.
// The status flip is best-effort: the result carries the error even when
// the record cannot be updated.
func (s *Service) failUnit(ctx context.Context, recordID snowflake.ID, result *refreshdomain.UnitResult, message string) {
	result.Status = refreshdomain.UnitFailed
	result.Error = message
	if err := s.repo.MarkOutcome(ctx, s.db, recordID, refreshdomain.StatusFailed, &message, s.clk.Now()); err != nil {
		fields := append(obscontext.Fields(ctx),
			zap.String("record_id", recordID.String()),
			zap.Error(err),
		)
		s.log.Warn("failed flip failed", fields...)
	}
}
