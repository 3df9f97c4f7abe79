package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
)

type CustomerRepository interface {
	Add(ctx context.Context, customer *models.Customer) error
	Get(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context) []*models.Customer
	Count(ctx context.Context) int
	Replace(ctx context.Context, customers []*models.Customer)
}

type InMemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
}

func NewCustomerRepository() *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{customers: make(map[string]*models.Customer)}
}

func (r *InMemoryCustomerRepository) Add(ctx context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.customers[customer.ID]; exists {
		return fmt.Errorf("%w: %s", errors.ErrCustomerAlreadyExists, customer.ID)
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *InMemoryCustomerRepository) Get(ctx context.Context, id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return nil, errors.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *InMemoryCustomerRepository) List(ctx context.Context) []*models.Customer {
	r.mu.RLock()
	customers := make([]*models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		customers = append(customers, c)
	}
	r.mu.RUnlock()

	sort.Slice(customers, func(i, j int) bool {
		return customers[i].ID < customers[j].ID
	})
	return customers
}

func (r *InMemoryCustomerRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

func (r *InMemoryCustomerRepository) Replace(ctx context.Context, customers []*models.Customer) {
	m := make(map[string]*models.Customer, len(customers))
	for _, c := range customers {
		m[c.ID] = c
	}
	r.mu.Lock()
	r.customers = m
	r.mu.Unlock()
}
