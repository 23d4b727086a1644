package meteringpoint

import (
	"github.com/nordlux/elcore/internal/meteringpoint/repository"
	"github.com/nordlux/elcore/internal/meteringpoint/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meteringpoint.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
