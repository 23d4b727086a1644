package product

import (
	"github.com/nordlux/elcore/internal/product/repository"
	"github.com/nordlux/elcore/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
