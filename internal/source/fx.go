package source

import (
	"github.com/staypoint/staypoint/internal/source/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("source",
	fx.Provide(repository.New),
)
