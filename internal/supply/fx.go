package supply

import (
	"github.com/nordlux/elcore/internal/supply/repository"
	"github.com/nordlux/elcore/internal/supply/service"
	"go.uber.org/fx"
)

var Module = fx.Module("supply.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
