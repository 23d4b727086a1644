package domain

import (
	"context"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	SupplierIdentityID uuid.UUID
	Name               string
	Cpr                *string
	Cvr                *string
	Address            *string
	Email              *string
	Phone              *string
}

// UpdateCustomerRequest carries the BRS-015 master-data change. Nil fields
// are left untouched.
type UpdateCustomerRequest struct {
	ID      uuid.UUID
	Name    *string
	Address *string
	Email   *string
	Phone   *string
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (Customer, error)
}
