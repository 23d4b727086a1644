package customer

import (
	"github.com/nordlux/elcore/internal/customer/repository"
	"github.com/nordlux/elcore/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
