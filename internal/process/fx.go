package process

import (
	"github.com/nordlux/elcore/internal/process/repository"
	"github.com/nordlux/elcore/internal/process/service"
	"go.uber.org/fx"
)

var Module = fx.Module("process.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
