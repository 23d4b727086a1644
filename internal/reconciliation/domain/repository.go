package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	"gorm.io/gorm"
)

type Repository interface {
	InsertWholesale(ctx context.Context, db *gorm.DB, ws *WholesaleSettlement) error
	InsertWholesaleLines(ctx context.Context, db *gorm.DB, lines []WholesaleSettlementLine) error
	// FindLatestWholesale returns the row with the newest ReceivedAt for
	// the (gridArea, period) key, or nil.
	FindLatestWholesale(ctx context.Context, db *gorm.DB, gridArea string, periodStart, periodEnd time.Time) (*WholesaleSettlement, error)
	FindWholesaleLines(ctx context.Context, db *gorm.DB, wholesaleID uuid.UUID) ([]WholesaleSettlementLine, error)

	// FindOurLines joins settlements and their metering points to return
	// every settlement line billed in the grid area for the period.
	FindOurLines(ctx context.Context, db *gorm.DB, gridArea string, periodStart, periodEnd time.Time) ([]settlementdomain.SettlementLine, error)

	InsertResult(ctx context.Context, db *gorm.DB, result *ReconciliationResult) error
	InsertResultLines(ctx context.Context, db *gorm.DB, lines []ReconciliationLine) error
	FindResultByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*ReconciliationResult, error)
	FindResultLines(ctx context.Context, db *gorm.DB, resultID uuid.UUID) ([]ReconciliationLine, error)
	ListResults(ctx context.Context, db *gorm.DB, gridArea string) ([]ReconciliationResult, error)
}
