package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type PersistenceService interface {
	Load(ctx context.Context) (*LoadReport, error)
	Save(ctx context.Context) error
	AutoSave(ctx context.Context)
}

type LoadReport struct {
	Customers       int      `json:"customers"`
	Accounts        int      `json:"accounts"`
	Transactions    int      `json:"transactions"`
	DroppedAccounts []string `json:"dropped_accounts,omitempty"`
}

type PersistenceServiceImpl struct {
	store           repository.LedgerStore
	customerRepo    repository.CustomerRepository
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	ids             *idgen.Generator
	autoSave        bool
	logger          *slog.Logger

	// mu serialises whole snapshots so two saves never interleave files.
	mu sync.Mutex
}

func NewPersistenceService(
	store repository.LedgerStore,
	customerRepo repository.CustomerRepository,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	ids *idgen.Generator,
	autoSave bool,
	logger *slog.Logger,
) *PersistenceServiceImpl {
	return &PersistenceServiceImpl{
		store:           store,
		customerRepo:    customerRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		ids:             ids,
		autoSave:        autoSave,
		logger:          logger,
	}
}

// Load replaces the in-memory ledger with the persisted one. It must run once
// at startup, before requests are served; it does not coordinate with
// concurrent ledger mutations. Accounts whose customer is missing are
// dropped. Every identifier counter is raised to the largest suffix seen,
// dropped accounts included, so reloaded IDs are never handed out again.
func (s *PersistenceServiceImpl) Load(ctx context.Context) (*LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers, err := s.store.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	accounts, err := s.store.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	transactions, err := s.store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	report := &LoadReport{}

	byID := make(map[string]*models.Customer, len(customers))
	customerIDs := make([]string, 0, len(customers))
	keptCustomers := make([]*models.Customer, 0, len(customers))
	for _, c := range customers {
		if _, dup := byID[c.ID]; dup {
			s.logger.Warn("skipping duplicate customer", "customer_id", c.ID)
			continue
		}
		byID[c.ID] = c
		customerIDs = append(customerIDs, c.ID)
		keptCustomers = append(keptCustomers, c)
	}

	seen := make(map[string]bool, len(accounts))
	accountNumbers := make([]string, 0, len(accounts))
	keptAccounts := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		accountNumbers = append(accountNumbers, a.Number())
		if seen[a.Number()] {
			s.logger.Warn("skipping duplicate account", "account_number", a.Number())
			continue
		}
		seen[a.Number()] = true
		if _, ok := byID[a.CustomerID()]; !ok {
			s.logger.Warn("dropping account with unknown customer",
				"account_number", a.Number(),
				"customer_id", a.CustomerID(),
			)
			report.DroppedAccounts = append(report.DroppedAccounts, a.Number())
			continue
		}
		keptAccounts = append(keptAccounts, a)
	}

	transactionIDs := make([]string, 0, len(transactions))
	for _, t := range transactions {
		transactionIDs = append(transactionIDs, t.ID)
	}

	s.customerRepo.Replace(ctx, keptCustomers)
	s.accountRepo.Replace(ctx, keptAccounts)
	s.transactionRepo.Replace(ctx, transactions)

	s.ids.Restore(idgen.Customer, idgen.HighWaterMark(idgen.Customer, customerIDs...))
	s.ids.Restore(idgen.Account, idgen.HighWaterMark(idgen.Account, accountNumbers...))
	s.ids.Restore(idgen.Transaction, idgen.HighWaterMark(idgen.Transaction, transactionIDs...))

	report.Customers = len(keptCustomers)
	report.Accounts = len(keptAccounts)
	report.Transactions = len(transactions)

	s.logger.Info("ledger loaded",
		"customers", report.Customers,
		"accounts", report.Accounts,
		"transactions", report.Transactions,
		"dropped_accounts", len(report.DroppedAccounts),
	)
	return report, nil
}

// Save writes a full snapshot of customers, accounts and transactions.
func (s *PersistenceServiceImpl) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveCustomers(ctx, s.customerRepo.List(ctx)); err != nil {
		return fmt.Errorf("failed to save customers: %w", err)
	}
	if err := s.store.SaveAccounts(ctx, s.accountRepo.List(ctx)); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	if err := s.store.SaveTransactions(ctx, s.transactionRepo.List(ctx)); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	s.logger.Debug("ledger saved")
	return nil
}

// AutoSave saves when auto-save is enabled. Failures are logged only; the
// mutation that triggered the save has already succeeded.
func (s *PersistenceServiceImpl) AutoSave(ctx context.Context) {
	if !s.autoSave {
		return
	}
	if err := s.Save(ctx); err != nil {
		s.logger.Error("auto-save failed", "error", err.Error())
	}
}
