package hotel

import (
	"github.com/staypoint/staypoint/internal/hotel/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("hotel",
	fx.Provide(repository.New),
)
