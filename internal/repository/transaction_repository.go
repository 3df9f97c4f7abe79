package repository

import (
	"context"
	"sync"

	"github.com/riteshkumar/account-ledger/internal/models"
)

type TransactionRepository interface {
	Append(ctx context.Context, transactions ...*models.Transaction)
	List(ctx context.Context) []*models.Transaction
	Filter(ctx context.Context, keep func(*models.Transaction) bool) []*models.Transaction
	Count(ctx context.Context) int
	Replace(ctx context.Context, transactions []*models.Transaction)
}

// InMemoryTransactionRepository is an append-only log kept in insertion order.
type InMemoryTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*models.Transaction
}

func NewTransactionRepository() *InMemoryTransactionRepository {
	return &InMemoryTransactionRepository{}
}

// Append adds the records under one lock, so a transfer's pair stays adjacent.
func (r *InMemoryTransactionRepository) Append(ctx context.Context, transactions ...*models.Transaction) {
	r.mu.Lock()
	r.transactions = append(r.transactions, transactions...)
	r.mu.Unlock()
}

func (r *InMemoryTransactionRepository) List(ctx context.Context) []*models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Transaction, len(r.transactions))
	copy(out, r.transactions)
	return out
}

func (r *InMemoryTransactionRepository) Filter(ctx context.Context, keep func(*models.Transaction) bool) []*models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Transaction
	for _, t := range r.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *InMemoryTransactionRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transactions)
}

func (r *InMemoryTransactionRepository) Replace(ctx context.Context, transactions []*models.Transaction) {
	out := make([]*models.Transaction, len(transactions))
	copy(out, transactions)
	r.mu.Lock()
	r.transactions = out
	r.mu.Unlock()
}
