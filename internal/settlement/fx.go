package settlement

import (
	"github.com/nordlux/elcore/internal/settlement/repository"
	"github.com/nordlux/elcore/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
