package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/customer/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/marketid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("customer.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, apperr.New(apperr.ErrValidation, "customer name is required")
	}
	if (req.Cpr == nil) == (req.Cvr == nil) {
		return domain.Customer{}, apperr.New(apperr.ErrValidation, "exactly one of cpr/cvr must be set")
	}
	if req.Cpr != nil {
		if _, err := marketid.NewCpr(*req.Cpr); err != nil {
			return domain.Customer{}, err
		}
	}
	if req.Cvr != nil {
		if _, err := marketid.NewCvr(*req.Cvr); err != nil {
			return domain.Customer{}, err
		}
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:                 uuid.New(),
		SupplierIdentityID: req.SupplierIdentityID,
		Name:               name,
		Cpr:                req.Cpr,
		Cvr:                req.Cvr,
		Address:            req.Address,
		Email:              req.Email,
		Phone:              req.Phone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, apperr.New(apperr.ErrNotFound, "customer %s not found", req.ID)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, apperr.New(apperr.ErrNotFound, "customer %s not found", id)
	}
	return *customer, nil
}
