package messaging

import (
	"github.com/nordlux/elcore/internal/messaging/repository"
	"github.com/nordlux/elcore/internal/messaging/service"
	"go.uber.org/fx"
)

var Module = fx.Module("messaging.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
