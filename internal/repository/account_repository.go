package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
)

type AccountRepository interface {
	Add(ctx context.Context, account models.Account) error
	Get(ctx context.Context, number string) (models.Account, error)
	List(ctx context.Context) []models.Account
	Count(ctx context.Context) int
	Replace(ctx context.Context, accounts []models.Account)
}

// InMemoryAccountRepository is the process-wide account store keyed by
// account number. The map lock guards membership only; balances are guarded
// by each account's own mutex.
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{accounts: make(map[string]models.Account)}
}

func (r *InMemoryAccountRepository) Add(ctx context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Number()]; exists {
		return fmt.Errorf("%w: %s", errors.ErrAccountAlreadyExists, account.Number())
	}
	r.accounts[account.Number()] = account
	return nil
}

func (r *InMemoryAccountRepository) Get(ctx context.Context, number string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[number]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

// List returns the accounts ordered by account number.
func (r *InMemoryAccountRepository) List(ctx context.Context) []models.Account {
	r.mu.RLock()
	accounts := make([]models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		accounts = append(accounts, a)
	}
	r.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Number() < accounts[j].Number()
	})
	return accounts
}

func (r *InMemoryAccountRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// Replace swaps the whole collection, used after a bulk load.
func (r *InMemoryAccountRepository) Replace(ctx context.Context, accounts []models.Account) {
	m := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		m[a.Number()] = a
	}
	r.mu.Lock()
	r.accounts = m
	r.mu.Unlock()
}
