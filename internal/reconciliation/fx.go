package reconciliation

import (
	"github.com/nordlux/elcore/internal/reconciliation/repository"
	"github.com/nordlux/elcore/internal/reconciliation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconciliation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
