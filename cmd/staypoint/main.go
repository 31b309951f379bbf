package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/staypoint/staypoint/internal/clock"
	"github.com/staypoint/staypoint/internal/config"
	"github.com/staypoint/staypoint/internal/events"
	"github.com/staypoint/staypoint/internal/fetch"
	"github.com/staypoint/staypoint/internal/hotel"
	"github.com/staypoint/staypoint/internal/migration"
	"github.com/staypoint/staypoint/internal/observability/logger"
	"github.com/staypoint/staypoint/internal/observability/tracing"
	"github.com/staypoint/staypoint/internal/organization"
	"github.com/staypoint/staypoint/internal/refresh"
	"github.com/staypoint/staypoint/internal/refresh/worker"
	"github.com/staypoint/staypoint/internal/seed"
	"github.com/staypoint/staypoint/internal/server"
	"github.com/staypoint/staypoint/internal/source"
	"github.com/staypoint/staypoint/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		clock.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.Bootstrap.EnsureDefaultOrg {
				if err := seed.EnsureDefaultOrg(conn); err != nil {
					return err
				}
			}
			if cfg.Bootstrap.SeedDemoData && !cfg.IsProduction() {
				return seed.EnsureDemoData(conn)
			}
			return nil
		}),
		organization.Module,
		hotel.Module,
		source.Module,
		fetch.Module,
		events.Module,
		refresh.Module,
		worker.Module,
		server.Module,
	)
	app.Run()
}
