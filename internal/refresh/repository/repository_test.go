package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRefreshTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&refreshdomain.Record{}, &refreshdomain.Meta{}, &refreshdomain.Point{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func testWindow(day int) refreshdomain.Window {
	checkIn := time.Date(2024, 3, 1+day, 0, 0, 0, 0, time.UTC)
	return refreshdomain.Window{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1)}
}

func createUnit(t *testing.T, db *gorm.DB, node *snowflake.Node, repo refreshdomain.Repository, sourceID snowflake.ID, w refreshdomain.Window) *refreshdomain.Record {
	t.Helper()
	record := &refreshdomain.Record{ID: node.Generate(), OrgID: node.Generate(), Provider: "demo"}
	meta := &refreshdomain.Meta{
		ID:       node.Generate(),
		SourceID: sourceID,
		Provider: "demo",
		CheckIn:  w.CheckIn,
		CheckOut: w.CheckOut,
	}
	if err := repo.CreatePending(context.Background(), db, record, meta); err != nil {
		t.Fatalf("create pending: %v", err)
	}
	return record
}

func TestCreatePendingRejectsDuplicateUnit(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	w := testWindow(0)
	sourceID := node.Generate()

	first := createUnit(t, db, node, repo, sourceID, w)

	dup := &refreshdomain.Record{ID: node.Generate(), OrgID: first.OrgID, Provider: "demo"}
	dupMeta := &refreshdomain.Meta{
		ID:       node.Generate(),
		SourceID: sourceID,
		Provider: "demo",
		CheckIn:  w.CheckIn,
		CheckOut: w.CheckOut,
	}
	err := repo.CreatePending(context.Background(), db, dup, dupMeta)
	if !errors.Is(err, refreshdomain.ErrUnitExists) {
		t.Fatalf("expected ErrUnitExists, got %v", err)
	}

	// The losing record must not survive the rolled-back transaction.
	var count int64
	if err := db.Model(&refreshdomain.Record{}).Count(&count).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after duplicate insert, got %d", count)
	}

	found, err := repo.FindRecord(context.Background(), db, sourceID, "demo", w)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if found == nil || found.ID != first.ID {
		t.Fatalf("expected winner record %v, got %+v", first.ID, found)
	}
}

func TestFindRecordReturnsNilWhenAbsent(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()

	found, err := repo.FindRecord(context.Background(), db, node.Generate(), "demo", testWindow(0))
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for unknown unit, got %+v", found)
	}
}

func TestAcquireProcessingFromPending(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	var got refreshdomain.Record
	if err := db.First(&got, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if got.Status != refreshdomain.StatusProcessing {
		t.Fatalf("expected processing, got %q", got.Status)
	}
}

func TestAcquireProcessingRejectsActiveHolder(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now.Add(time.Minute))
	if !errors.Is(err, refreshdomain.ErrRecordBusy) {
		t.Fatalf("expected ErrRecordBusy, got %v", err)
	}
}

func TestAcquireProcessingStealsStuckRecord(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// A holder older than ttl is treated as dead and the record reacquired.
	later := now.Add(6*time.Hour + time.Minute)
	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, later); err != nil {
		t.Fatalf("expected steal of stuck record, got %v", err)
	}
}

func TestMarkOutcomeRequiresProcessing(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := repo.MarkOutcome(context.Background(), db, record.ID, refreshdomain.StatusSaved, nil, now)
	if !errors.Is(err, refreshdomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from pending, got %v", err)
	}

	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := repo.MarkOutcome(context.Background(), db, record.ID, refreshdomain.StatusSaved, nil, now); err != nil {
		t.Fatalf("mark saved: %v", err)
	}

	// A second flip without reacquiring must fail.
	err = repo.MarkOutcome(context.Background(), db, record.ID, refreshdomain.StatusFailed, nil, now)
	if !errors.Is(err, refreshdomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after terminal flip, got %v", err)
	}
}

func TestMarkOutcomeRejectsNonTerminalStatus(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	err := repo.MarkOutcome(context.Background(), db, record.ID, refreshdomain.StatusPending, nil, time.Now().UTC())
	if !errors.Is(err, refreshdomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending target, got %v", err)
	}
}

func TestMarkOutcomeStoresFailureMessage(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	message := "timeout"
	if err := repo.MarkOutcome(context.Background(), db, record.ID, refreshdomain.StatusFailed, &message, now); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	var got refreshdomain.Record
	if err := db.First(&got, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if got.Status != refreshdomain.StatusFailed {
		t.Fatalf("expected failed, got %q", got.Status)
	}
	if got.LastError == nil || *got.LastError != "timeout" {
		t.Fatalf("expected last_error timeout, got %v", got.LastError)
	}
}

func TestMarkSavedIsIdempotentAndSkipsProcessing(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	record := createUnit(t, db, node, repo, node.Generate(), testWindow(0))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.MarkSaved(context.Background(), db, record.ID, now); err != nil {
		t.Fatalf("mark saved: %v", err)
	}
	if err := repo.MarkSaved(context.Background(), db, record.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("second mark saved: %v", err)
	}

	var got refreshdomain.Record
	if err := db.First(&got, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if got.Status != refreshdomain.StatusSaved {
		t.Fatalf("expected saved, got %q", got.Status)
	}
	// updated_at must not move once the record is already saved.
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, got.UpdatedAt)
	}

	if err := repo.AcquireProcessing(context.Background(), db, record.ID, 6*time.Hour, now.Add(time.Hour)); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := repo.MarkSaved(context.Background(), db, record.ID, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("mark saved on processing: %v", err)
	}
	if err := db.First(&got, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if got.Status != refreshdomain.StatusProcessing {
		t.Fatalf("mark saved must not override an active holder, got %q", got.Status)
	}
}

func TestReplacePointsReplacesWholeSet(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	w := testWindow(0)
	record := createUnit(t, db, node, repo, node.Generate(), w)

	makePoint := func(room string, rate float64, at time.Time) refreshdomain.Point {
		return refreshdomain.Point{
			ID:         node.Generate(),
			OrgID:      record.OrgID,
			RecordID:   record.ID,
			RoomTypeID: node.Generate(),
			Provider:   "demo",
			CheckIn:    w.CheckIn,
			CheckOut:   w.CheckOut,
			RoomName:   room,
			Rate:       rate,
			Valid:      true,
			CreatedAt:  at,
			UpdatedAt:  at,
		}
	}

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.ReplacePoints(context.Background(), db, record.ID, "demo", w, []refreshdomain.Point{
		makePoint("Standard", 120, first),
		makePoint("Deluxe", 180, first),
	}); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := first.Add(7 * time.Hour)
	if err := repo.ReplacePoints(context.Background(), db, record.ID, "demo", w, []refreshdomain.Point{
		makePoint("Standard", 135, second),
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	points, err := repo.ListPoints(context.Background(), db, record.ID, "demo", w)
	if err != nil {
		t.Fatalf("list points: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point after replace, got %d", len(points))
	}
	if points[0].RoomName != "Standard" || points[0].Rate != 135 {
		t.Fatalf("unexpected surviving point: %+v", points[0])
	}

	latest, err := repo.LatestPoint(context.Background(), db, record.ID, "demo", w)
	if err != nil {
		t.Fatalf("latest point: %v", err)
	}
	if latest == nil || !latest.UpdatedAt.Equal(second) {
		t.Fatalf("expected latest point at %v, got %+v", second, latest)
	}
}

func TestLatestPointNilWithoutPoints(t *testing.T) {
	db := setupRefreshTestDB(t)
	node := testNode(t)
	repo := New()
	w := testWindow(0)
	record := createUnit(t, db, node, repo, node.Generate(), w)

	latest, err := repo.LatestPoint(context.Background(), db, record.ID, "demo", w)
	if err != nil {
		t.Fatalf("latest point: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil latest point, got %+v", latest)
	}
}
