package price

import (
	"github.com/nordlux/elcore/internal/price/repository"
	"github.com/nordlux/elcore/internal/price/service"
	"go.uber.org/fx"
)

var Module = fx.Module("price.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
