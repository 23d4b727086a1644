package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/process/domain"
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

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.BrsProcess) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *domain.BrsProcess) error {
	return db.WithContext(ctx).Save(p).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.BrsProcess, error) {
	return first[domain.BrsProcess](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*domain.BrsProcess, error) {
	return first[domain.BrsProcess](db.WithContext(ctx), "transaction_id = ?", transactionID)
}

func (r *repo) FindMany(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.BrsProcess, error) {
	q := db.WithContext(ctx).Model(&domain.BrsProcess{})
	if filter.ProcessType != nil {
		q = q.Where("process_type = ?", *filter.ProcessType)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Gsrn != nil {
		q = q.Where("gsrn = ?", *filter.Gsrn)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var processes []domain.BrsProcess
	err := q.Order("started_at desc").Find(&processes).Error
	return processes, err
}

func (r *repo) InsertTransitions(ctx context.Context, db *gorm.DB, transitions []domain.ProcessTransition) error {
	if len(transitions) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&transitions).Error
}

func (r *repo) FindTransitions(ctx context.Context, db *gorm.DB, processID uuid.UUID) ([]domain.ProcessTransition, error) {
	var transitions []domain.ProcessTransition
	err := db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("transitioned_at asc").
		Find(&transitions).Error
	return transitions, err
}
