package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/market"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, price *Price) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Price, error)
	FindByChargeID(ctx context.Context, db *gorm.DB, chargeID, ownerGln string) (*Price, error)
	Update(ctx context.Context, db *gorm.DB, price *Price) error

	InsertPoint(ctx context.Context, db *gorm.DB, point *PricePoint) error
	FindPoints(ctx context.Context, db *gorm.DB, priceID uuid.UUID) ([]PricePoint, error)
	FindPointAt(ctx context.Context, db *gorm.DB, priceID uuid.UUID, at time.Time) (*PricePoint, error)
	DeletePointsInRange(ctx context.Context, db *gorm.DB, priceID uuid.UUID, start, end time.Time) error

	FindSpot(ctx context.Context, db *gorm.DB, area market.PriceArea, at time.Time) (*SpotPrice, error)
	InsertSpot(ctx context.Context, db *gorm.DB, spot *SpotPrice) error
	UpdateSpot(ctx context.Context, db *gorm.DB, spot *SpotPrice) error
	FindSpotRange(ctx context.Context, db *gorm.DB, area market.PriceArea, start time.Time, end *time.Time) ([]SpotPrice, error)

	InsertLink(ctx context.Context, db *gorm.DB, link *PriceLink) error
	FindLinkByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*PriceLink, error)
	FindOpenLink(ctx context.Context, db *gorm.DB, meteringPointID, priceID uuid.UUID) (*PriceLink, error)
	FindLinksOverlapping(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, start time.Time, end *time.Time) ([]PriceLink, error)
	UpdateLink(ctx context.Context, db *gorm.DB, link *PriceLink) error
}
