package main

import (
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	"github.com/nordlux/elcore/internal/customer"
	"github.com/nordlux/elcore/internal/dispatcher"
	"github.com/nordlux/elcore/internal/logger"
	"github.com/nordlux/elcore/internal/messaging"
	"github.com/nordlux/elcore/internal/meteringpoint"
	"github.com/nordlux/elcore/internal/migration"
	"github.com/nordlux/elcore/internal/price"
	"github.com/nordlux/elcore/internal/process"
	"github.com/nordlux/elcore/internal/product"
	"github.com/nordlux/elcore/internal/reconciliation"
	"github.com/nordlux/elcore/internal/scheduler"
	"github.com/nordlux/elcore/internal/server"
	"github.com/nordlux/elcore/internal/settlement"
	"github.com/nordlux/elcore/internal/spotfetch"
	"github.com/nordlux/elcore/internal/supplier"
	"github.com/nordlux/elcore/internal/supply"
	"github.com/nordlux/elcore/internal/timeseries"
	"github.com/nordlux/elcore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		db.Module,
		migration.Module,

		// Domain services
		supplier.Module,
		customer.Module,
		meteringpoint.Module,
		supply.Module,
		product.Module,
		price.Module,
		timeseries.Module,
		settlement.Module,
		reconciliation.Module,
		messaging.Module,
		process.Module,

		// Workers and surface
		dispatcher.Module,
		scheduler.Module,
		spotfetch.Module,
		server.Module,
	)
	app.Run()
}
