package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/reconciliation/domain"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func first[T any](db *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	err := db.First(&row, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) InsertWholesale(ctx context.Context, db *gorm.DB, ws *domain.WholesaleSettlement) error {
	return db.WithContext(ctx).Create(ws).Error
}

func (r *repo) InsertWholesaleLines(ctx context.Context, db *gorm.DB, lines []domain.WholesaleSettlementLine) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(lines, 200).Error
}

func (r *repo) FindLatestWholesale(ctx context.Context, db *gorm.DB, gridArea string, periodStart, periodEnd time.Time) (*domain.WholesaleSettlement, error) {
	var ws domain.WholesaleSettlement
	err := db.WithContext(ctx).
		Where("grid_area = ? AND period_start = ? AND period_end = ?", gridArea, periodStart, periodEnd).
		Order("received_at desc").
		First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *repo) FindWholesaleLines(ctx context.Context, db *gorm.DB, wholesaleID uuid.UUID) ([]domain.WholesaleSettlementLine, error) {
	var lines []domain.WholesaleSettlementLine
	err := db.WithContext(ctx).
		Where("wholesale_settlement_id = ?", wholesaleID).
		Order("description asc").
		Find(&lines).Error
	return lines, err
}

func (r *repo) FindOurLines(ctx context.Context, db *gorm.DB, gridArea string, periodStart, periodEnd time.Time) ([]settlementdomain.SettlementLine, error) {
	var lines []settlementdomain.SettlementLine
	err := db.WithContext(ctx).
		Table("settlement_lines").
		Joins("JOIN settlements ON settlements.id = settlement_lines.settlement_id").
		Joins("JOIN metering_points ON metering_points.id = settlements.metering_point_id").
		Where("metering_points.grid_area = ?", gridArea).
		Where("settlements.period_start = ? AND settlements.period_end = ?", periodStart, periodEnd).
		Select("settlement_lines.*").
		Find(&lines).Error
	return lines, err
}

func (r *repo) InsertResult(ctx context.Context, db *gorm.DB, result *domain.ReconciliationResult) error {
	return db.WithContext(ctx).Create(result).Error
}

func (r *repo) InsertResultLines(ctx context.Context, db *gorm.DB, lines []domain.ReconciliationLine) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(lines, 200).Error
}

func (r *repo) FindResultByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.ReconciliationResult, error) {
	return first[domain.ReconciliationResult](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindResultLines(ctx context.Context, db *gorm.DB, resultID uuid.UUID) ([]domain.ReconciliationLine, error) {
	var lines []domain.ReconciliationLine
	err := db.WithContext(ctx).
		Where("reconciliation_result_id = ?", resultID).
		Order("description asc").
		Find(&lines).Error
	return lines, err
}

func (r *repo) ListResults(ctx context.Context, db *gorm.DB, gridArea string) ([]domain.ReconciliationResult, error) {
	stmt := db.WithContext(ctx)
	if gridArea != "" {
		stmt = stmt.Where("grid_area = ?", gridArea)
	}
	var results []domain.ReconciliationResult
	err := stmt.Order("run_at desc").Find(&results).Error
	return results, err
}
