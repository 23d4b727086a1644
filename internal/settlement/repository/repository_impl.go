package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/settlement/domain"
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

func (r *repo) Insert(ctx context.Context, db *gorm.DB, settlement *domain.Settlement) error {
	return db.WithContext(ctx).Create(settlement).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, settlement *domain.Settlement) error {
	return db.WithContext(ctx).Save(settlement).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Settlement, error) {
	return first[domain.Settlement](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindFor(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time, isCorrection bool) (*domain.Settlement, error) {
	return first[domain.Settlement](db.WithContext(ctx),
		"metering_point_id = ? AND period_start = ? AND period_end = ? AND is_correction = ?",
		meteringPointID, periodStart, periodEnd, isCorrection)
}

func (r *repo) ListForMeteringPoint(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID) ([]domain.Settlement, error) {
	var settlements []domain.Settlement
	err := db.WithContext(ctx).
		Where("metering_point_id = ?", meteringPointID).
		Order("period_start asc, is_correction asc").
		Find(&settlements).Error
	return settlements, err
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status domain.SettlementStatus) ([]domain.Settlement, error) {
	var settlements []domain.Settlement
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("calculated_at asc").
		Find(&settlements).Error
	return settlements, err
}

func (r *repo) NextDocumentNumber(ctx context.Context, db *gorm.DB, year int) (int, error) {
	var max int
	err := db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Select("COALESCE(MAX(document_number), 0)").
		Where("calculated_at >= ? AND calculated_at < ?",
			time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []domain.SettlementLine) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(lines, 100).Error
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, settlementID uuid.UUID) ([]domain.SettlementLine, error) {
	var lines []domain.SettlementLine
	err := db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("position asc").
		Find(&lines).Error
	return lines, err
}

func (r *repo) InsertIssue(ctx context.Context, db *gorm.DB, issue *domain.SettlementIssue) error {
	return db.WithContext(ctx).Create(issue).Error
}

func (r *repo) UpdateIssue(ctx context.Context, db *gorm.DB, issue *domain.SettlementIssue) error {
	return db.WithContext(ctx).Save(issue).Error
}

func (r *repo) FindIssueByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.SettlementIssue, error) {
	return first[domain.SettlementIssue](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindOpenIssue(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time, issueType domain.IssueType, message string) (*domain.SettlementIssue, error) {
	return first[domain.SettlementIssue](db.WithContext(ctx),
		"metering_point_id = ? AND period_start = ? AND period_end = ? AND issue_type = ? AND message = ? AND status = ?",
		meteringPointID, periodStart, periodEnd, issueType, message, domain.IssueOpen)
}

func (r *repo) FindOpenIssues(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time) ([]domain.SettlementIssue, error) {
	var issues []domain.SettlementIssue
	err := db.WithContext(ctx).
		Where("metering_point_id = ? AND period_start = ? AND period_end = ? AND status = ?",
			meteringPointID, periodStart, periodEnd, domain.IssueOpen).
		Order("created_at asc").
		Find(&issues).Error
	return issues, err
}

func (r *repo) ListIssuesByStatus(ctx context.Context, db *gorm.DB, status domain.IssueStatus) ([]domain.SettlementIssue, error) {
	var issues []domain.SettlementIssue
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&issues).Error
	return issues, err
}
