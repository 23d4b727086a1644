package domain

import (
	"context"

	"github.com/google/uuid"
)

type CreateSupplierRequest struct {
	Gln  string
	Name string
	Cvr  *string
}

type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (SupplierIdentity, error)
	GetByGln(ctx context.Context, gln string) (SupplierIdentity, error)
	Archive(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]SupplierIdentity, error)
}
