package supplier

import (
	"github.com/nordlux/elcore/internal/supplier/repository"
	"github.com/nordlux/elcore/internal/supplier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("supplier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
