// Package server exposes the HTTP API: source registration, manual refresh
// triggers and stored-rate queries.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/staypoint/staypoint/internal/config"
	"github.com/staypoint/staypoint/internal/observability/logger"
	"github.com/staypoint/staypoint/internal/observability/metrics"
	refreshservice "github.com/staypoint/staypoint/internal/refresh/service"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

type Server struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	engine     *gin.Engine
	refreshSvc *refreshservice.Service
	sourceRepo sourcedomain.Repository
	triggers   *rateLimiter
}

type Params struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Engine     *gin.Engine
	RefreshSvc *refreshservice.Service
	SourceRepo sourcedomain.Repository
}

// NewEngine builds the gin engine with logging and metrics middleware.
func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(metrics.HTTP(metrics.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})))
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:        p.Config,
		db:         p.DB,
		log:        p.Log.Named("server"),
		genID:      p.GenID,
		engine:     p.Engine,
		refreshSvc: p.RefreshSvc,
		sourceRepo: p.SourceRepo,
		triggers:   newRateLimiter(6, time.Minute),
	}
}

// RegisterRoutes wires all HTTP endpoints.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.GET("/sources", s.ListSources)
	api.POST("/sources", s.CreateSource)
	api.PATCH("/sources/:id/locator", s.UpdateSourceLocator)
	api.POST("/refresh/run", s.RunRefresh)
	api.GET("/refresh/latest", s.LatestRefresh)
	api.GET("/hotels/:id/rates", s.HotelRates)
}

// Health reports liveness and database reachability.
func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
