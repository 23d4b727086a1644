package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, settlement *Settlement) error
	Update(ctx context.Context, db *gorm.DB, settlement *Settlement) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Settlement, error)
	FindFor(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time, isCorrection bool) (*Settlement, error)
	ListForMeteringPoint(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID) ([]Settlement, error)
	ListByStatus(ctx context.Context, db *gorm.DB, status SettlementStatus) ([]Settlement, error)

	// NextDocumentNumber allocates the next sequence value for the year.
	// Callers run it inside the same transaction as the insert.
	NextDocumentNumber(ctx context.Context, db *gorm.DB, year int) (int, error)

	InsertLines(ctx context.Context, db *gorm.DB, lines []SettlementLine) error
	FindLines(ctx context.Context, db *gorm.DB, settlementID uuid.UUID) ([]SettlementLine, error)

	InsertIssue(ctx context.Context, db *gorm.DB, issue *SettlementIssue) error
	UpdateIssue(ctx context.Context, db *gorm.DB, issue *SettlementIssue) error
	FindIssueByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*SettlementIssue, error)
	FindOpenIssue(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time, issueType IssueType, message string) (*SettlementIssue, error)
	FindOpenIssues(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time) ([]SettlementIssue, error)
	ListIssuesByStatus(ctx context.Context, db *gorm.DB, status IssueStatus) ([]SettlementIssue, error)
}
