package organization

import (
	"github.com/bwmarrin/snowflake"
	"github.com/staypoint/staypoint/internal/cache"
	"github.com/staypoint/staypoint/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization",
	fx.Provide(func() cache.Cache[snowflake.ID, snowflake.ID] {
		return cache.NewTTLCache[snowflake.ID, snowflake.ID]()
	}),
	fx.Provide(service.NewResolver),
)
