package repository

import (
	"context"

	"github.com/riteshkumar/account-ledger/internal/models"
)

// LedgerStore loads and saves full snapshots of the ledger collections.
// Loaders skip rows they cannot parse and log them; they fail only when the
// underlying storage itself cannot be read.
type LedgerStore interface {
	LoadCustomers(ctx context.Context) ([]*models.Customer, error)
	LoadAccounts(ctx context.Context) ([]models.Account, error)
	LoadTransactions(ctx context.Context) ([]*models.Transaction, error)

	SaveCustomers(ctx context.Context, customers []*models.Customer) error
	SaveAccounts(ctx context.Context, accounts []models.Account) error
	SaveTransactions(ctx context.Context, transactions []*models.Transaction) error
}
