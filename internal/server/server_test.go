package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/staypoint/staypoint/internal/clock"
	"github.com/staypoint/staypoint/internal/config"
	"github.com/staypoint/staypoint/internal/fetch"
	hoteldomain "github.com/staypoint/staypoint/internal/hotel/domain"
	hotelrepo "github.com/staypoint/staypoint/internal/hotel/repository"
	organizationdomain "github.com/staypoint/staypoint/internal/organization/domain"
	refreshdomain "github.com/staypoint/staypoint/internal/refresh/domain"
	refreshrepo "github.com/staypoint/staypoint/internal/refresh/repository"
	refreshservice "github.com/staypoint/staypoint/internal/refresh/service"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	sourcerepo "github.com/staypoint/staypoint/internal/source/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, locator string, checkIn, checkOut time.Time) (fetch.Result, error) {
	return fetch.Result{RoomLabel: "Standard", RateText: "$150", OK: true}, nil
}

type stubResolver struct{ orgID snowflake.ID }

func (r stubResolver) ResolveOrg(ctx context.Context, hotelID snowflake.ID) (snowflake.ID, error) {
	return r.orgID, nil
}

type serverFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	org   organizationdomain.Organization
	hotel hoteldomain.Hotel
}

func setupTestServer(t *testing.T) (*Server, *serverFixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&organizationdomain.Organization{},
		&hoteldomain.Hotel{},
		&hoteldomain.RoomType{},
		&sourcedomain.Source{},
		&refreshdomain.Record{},
		&refreshdomain.Meta{},
		&refreshdomain.Point{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	org := organizationdomain.Organization{ID: node.Generate(), Name: "Test", Slug: "test"}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org: %v", err)
	}
	hotel := hoteldomain.Hotel{ID: node.Generate(), OrgID: org.ID, Name: "Test Hotel"}
	if err := db.Create(&hotel).Error; err != nil {
		t.Fatalf("create hotel: %v", err)
	}

	svc := refreshservice.New(refreshservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    &clock.Fixed{At: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		Repo:     refreshrepo.New(),
		Sources:  sourcerepo.New(),
		Rooms:    hotelrepo.New(node),
		Resolver: stubResolver{orgID: org.ID},
		Fetcher:  stubFetcher{},
		Config:   config.RefreshConfig{HorizonDays: 2, TTL: 6 * time.Hour, Concurrency: 1},
	})

	srv := &Server{
		cfg:        config.Config{ServiceName: "staypoint-test"},
		db:         db,
		log:        zap.NewNop(),
		genID:      node,
		engine:     gin.New(),
		refreshSvc: svc,
		sourceRepo: sourcerepo.New(),
		triggers:   newRateLimiter(2, time.Minute),
	}
	srv.RegisterRoutes()
	return srv, &serverFixture{db: db, node: node, org: org, hotel: hotel}
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateSourceAndList(t *testing.T) {
	srv, fx := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sources", map[string]string{
		"org_id":   fx.org.ID.String(),
		"hotel_id": fx.hotel.ID.String(),
		"provider": "demo",
		"locator":  "https://rates.example.com/a?checkin={checkin}&checkout={checkout}",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create source: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sources", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sources: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Data []sourcedomain.Source `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Data) != 1 || listed.Data[0].Provider != "demo" {
		t.Fatalf("unexpected listing %+v", listed.Data)
	}
}

func TestCreateSourceValidation(t *testing.T) {
	srv, fx := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sources", map[string]string{
		"org_id":   "not-a-number",
		"hotel_id": fx.hotel.ID.String(),
		"provider": "demo",
		"locator":  "https://rates.example.com/a",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad org_id, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/sources", map[string]string{
		"org_id":   fx.org.ID.String(),
		"hotel_id": fx.hotel.ID.String(),
		"provider": "",
		"locator":  "https://rates.example.com/a",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty provider, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/sources", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec2.Code)
	}
}

func TestUpdateSourceLocator(t *testing.T) {
	srv, fx := setupTestServer(t)

	src := sourcedomain.Source{
		ID:       fx.node.Generate(),
		OrgID:    fx.org.ID,
		HotelID:  fx.hotel.ID,
		Provider: "demo",
		Locator:  "https://rates.example.com/old",
		Active:   true,
	}
	if err := fx.db.Create(&src).Error; err != nil {
		t.Fatalf("create source: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPatch, "/api/sources/"+src.ID.String()+"/locator", map[string]string{
		"locator": "https://rates.example.com/new",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got sourcedomain.Source
	if err := fx.db.First(&got, "id = ?", src.ID).Error; err != nil {
		t.Fatalf("load source: %v", err)
	}
	if got.Locator != "https://rates.example.com/new" {
		t.Fatalf("locator not updated: %q", got.Locator)
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/sources/"+fx.node.Generate().String()+"/locator", map[string]string{
		"locator": "https://rates.example.com/other",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown source, got %d", rec.Code)
	}
}

func TestRunRefreshReturnsReport(t *testing.T) {
	srv, fx := setupTestServer(t)

	src := sourcedomain.Source{
		ID:       fx.node.Generate(),
		OrgID:    fx.org.ID,
		HotelID:  fx.hotel.ID,
		Provider: "demo",
		Locator:  "https://rates.example.com/a?checkin={checkin}&checkout={checkout}",
		Active:   true,
	}
	if err := fx.db.Create(&src).Error; err != nil {
		t.Fatalf("create source: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/refresh/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data refreshdomain.BatchReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if body.Data.Saved != 2 || len(body.Data.Units) != 2 {
		t.Fatalf("unexpected report %+v", body.Data)
	}
}

func TestLatestRefreshReport(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/refresh/latest", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any cycle, got %d", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/refresh/run", nil); rec.Code != http.StatusOK {
		t.Fatalf("run refresh: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/refresh/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after a cycle, got %d", rec.Code)
	}
}

func TestRunRefreshRateLimited(t *testing.T) {
	srv, _ := setupTestServer(t)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/refresh/run", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("trigger %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/refresh/run", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the trigger budget, got %d", rec.Code)
	}
}

func TestHotelRatesDateValidation(t *testing.T) {
	srv, fx := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/hotels/"+fx.hotel.ID.String()+"/rates?from=yesterday", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad date, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/hotels/"+fx.hotel.ID.String()+"/rates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty result, got %d", rec.Code)
	}
}

func TestHealthProbesDatabase(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
}
