// Package migration brings the schema up on startup. AutoMigrate keeps the
// module usable out of the box on every supported dialect, sqlite included.
package migration

import (
	cdomain "github.com/nordlux/elcore/internal/customer/domain"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	processdomain "github.com/nordlux/elcore/internal/process/domain"
	productdomain "github.com/nordlux/elcore/internal/product/domain"
	recondomain "github.com/nordlux/elcore/internal/reconciliation/domain"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	supplierdomain "github.com/nordlux/elcore/internal/supplier/domain"
	supplydomain "github.com/nordlux/elcore/internal/supply/domain"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&supplierdomain.SupplierIdentity{},
		&cdomain.Customer{},
		&mpdomain.MeteringPoint{},
		&supplydomain.Supply{},
		&supplydomain.SupplyProductPeriod{},
		&productdomain.SupplierProduct{},
		&productdomain.SupplierMargin{},
		&pricedomain.Price{},
		&pricedomain.PricePoint{},
		&pricedomain.PriceLink{},
		&pricedomain.SpotPrice{},
		&tsdomain.TimeSeries{},
		&tsdomain.Observation{},
		&settlementdomain.Settlement{},
		&settlementdomain.SettlementLine{},
		&settlementdomain.SettlementIssue{},
		&recondomain.WholesaleSettlement{},
		&recondomain.WholesaleSettlementLine{},
		&recondomain.ReconciliationResult{},
		&recondomain.ReconciliationLine{},
		&processdomain.BrsProcess{},
		&processdomain.ProcessTransition{},
		&messagingdomain.InboxMessage{},
		&messagingdomain.OutboxMessage{},
	); err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}
