package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error)
	FindCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) []*models.Customer
}

type CustomerServiceImpl struct {
	customerRepo repository.CustomerRepository
	ids          *idgen.Generator
	logger       *slog.Logger
}

func NewCustomerService(customerRepo repository.CustomerRepository, ids *idgen.Generator, logger *slog.Logger) *CustomerServiceImpl {
	return &CustomerServiceImpl{
		customerRepo: customerRepo,
		ids:          ids,
		logger:       logger,
	}
}

func (s *CustomerServiceImpl) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	customerType, err := models.ParseCustomerType(req.Type)
	if err != nil {
		s.logger.Warn("invalid create customer request", "error", err.Error())
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "must be non-empty")
	}
	if req.Age < 0 {
		return nil, errors.NewValidationError("age", "must not be negative")
	}

	customer := &models.Customer{
		ID:      s.ids.Next(idgen.Customer),
		Type:    customerType,
		Name:    name,
		Age:     req.Age,
		Contact: strings.TrimSpace(req.Contact),
		Address: strings.TrimSpace(req.Address),
		Email:   strings.TrimSpace(req.Email),
	}
	if err := s.customerRepo.Add(ctx, customer); err != nil {
		s.logger.Error("failed to create customer",
			"customer_id", customer.ID,
			"error", err.Error(),
		)
		return nil, err
	}

	s.logger.Info("customer created successfully",
		"customer_id", customer.ID,
		"customer_type", customer.Type,
	)
	return customer, nil
}

func (s *CustomerServiceImpl) FindCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.customerRepo.Get(ctx, id)
	if err != nil {
		s.logger.Warn("customer not found", "customer_id", id)
		return nil, err
	}
	return customer, nil
}

func (s *CustomerServiceImpl) ListCustomers(ctx context.Context) []*models.Customer {
	return s.customerRepo.List(ctx)
}
