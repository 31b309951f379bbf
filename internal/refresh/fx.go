package refresh

import (
	"github.com/staypoint/staypoint/internal/refresh/repository"
	"github.com/staypoint/staypoint/internal/refresh/service"
	"go.uber.org/fx"
)

var Module = fx.Module("refresh",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
