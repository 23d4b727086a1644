package timeseries

import (
	"github.com/nordlux/elcore/internal/timeseries/repository"
	"github.com/nordlux/elcore/internal/timeseries/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeseries.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
