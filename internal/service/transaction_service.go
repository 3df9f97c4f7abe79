package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/events"
	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type TransactionService interface {
	ProcessDeposit(ctx context.Context, accountNumber string, amount float64) (*models.Transaction, error)
	ProcessWithdrawal(ctx context.Context, accountNumber string, amount float64) (*models.Transaction, error)
	Transfer(ctx context.Context, from, to string, amount float64) (*models.TransferResult, error)
	Totals(ctx context.Context, accountNumber string) (*models.TransactionTotals, error)
	Search(ctx context.Context, filter models.TransactionFilter) []*models.Transaction
	History(ctx context.Context, accountNumber string) ([]*models.Transaction, error)
}

type TransactionServiceImpl struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	ids             *idgen.Generator
	recorder        *ledgerRecorder
	logger          *slog.Logger
	clock           func() time.Time
}

func NewTransactionService(
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	ids *idgen.Generator,
	publisher events.Publisher,
	logger *slog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		ids:             ids,
		recorder:        &ledgerRecorder{auditRepo: auditRepo, publisher: publisher, logger: logger},
		logger:          logger,
		clock:           time.Now,
	}
}

// ProcessDeposit credits the account and records a DEPOSIT whose balance is
// the one produced by the same critical section.
func (s *TransactionServiceImpl) ProcessDeposit(ctx context.Context, accountNumber string, amount float64) (*models.Transaction, error) {
	account, err := s.findAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	balance, err := account.Deposit(amount)
	if err != nil {
		s.logger.Warn("deposit rejected",
			"account_number", accountNumber,
			"amount", amount,
			"error", err.Error(),
		)
		return nil, err
	}

	t := s.newTransaction(accountNumber, models.TransactionDeposit, amount, balance, s.clock())
	s.transactionRepo.Append(ctx, t)
	s.recorder.auditBalance(ctx, accountNumber, models.AuditActionCredit, balance-amount, balance)
	s.recorder.transactionRecorded(ctx, t)

	s.logger.Info("deposit processed",
		"account_number", accountNumber,
		"transaction_id", t.ID,
		"amount", amount,
	)
	return t, nil
}

// ProcessWithdrawal debits the account under its variant policy. A rejected
// withdrawal leaves no transaction behind.
func (s *TransactionServiceImpl) ProcessWithdrawal(ctx context.Context, accountNumber string, amount float64) (*models.Transaction, error) {
	account, err := s.findAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	balance, err := account.Withdraw(amount)
	if err != nil {
		s.logger.Warn("withdrawal rejected",
			"account_number", accountNumber,
			"amount", amount,
			"error", err.Error(),
		)
		return nil, err
	}

	t := s.newTransaction(accountNumber, models.TransactionWithdrawal, amount, balance, s.clock())
	s.transactionRepo.Append(ctx, t)
	s.recorder.auditBalance(ctx, accountNumber, models.AuditActionDebit, balance+amount, balance)
	s.recorder.transactionRecorded(ctx, t)

	s.logger.Info("withdrawal processed",
		"account_number", accountNumber,
		"transaction_id", t.ID,
		"amount", amount,
	)
	return t, nil
}

// Transfer moves amount between two distinct accounts. Both accounts are
// resolved before any balance changes, and the source is debited before the
// destination is credited. If the credit fails the debit is reversed, so a
// transfer either fully applies or leaves both balances as they were.
func (s *TransactionServiceImpl) Transfer(ctx context.Context, from, to string, amount float64) (*models.TransferResult, error) {
	if from == to {
		s.logger.Warn("invalid transfer request",
			"from_account_number", from,
			"to_account_number", to,
			"error", errors.ErrSameAccount.Error(),
		)
		return nil, errors.ErrSameAccount
	}
	if !models.IsValidAmount(amount) {
		return nil, errors.ErrInvalidAmount
	}

	source, err := s.findAccount(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("source account: %w", err)
	}
	destination, err := s.findAccount(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("destination account: %w", err)
	}

	sourceBalance, err := source.Withdraw(amount)
	if err != nil {
		s.logger.Warn("transfer rejected",
			"from_account_number", from,
			"to_account_number", to,
			"amount", amount,
			"error", err.Error(),
		)
		return nil, err
	}

	destinationBalance, err := destination.Deposit(amount)
	if err != nil {
		if _, rerr := source.Deposit(amount); rerr != nil {
			s.logger.Error("failed to reverse transfer debit",
				"from_account_number", from,
				"amount", amount,
				"error", rerr.Error(),
			)
		}
		s.logger.Error("transfer credit failed",
			"to_account_number", to,
			"amount", amount,
			"error", err.Error(),
		)
		return nil, errors.NewTransactionError("credit destination", err)
	}

	now := s.clock()
	result := &models.TransferResult{
		Debit:  s.newTransaction(from, models.TransactionTransferOut, amount, sourceBalance, now),
		Credit: s.newTransaction(to, models.TransactionTransferIn, amount, destinationBalance, now),
	}
	s.transactionRepo.Append(ctx, result.Debit, result.Credit)

	s.recorder.auditBalance(ctx, from, models.AuditActionDebit, sourceBalance+amount, sourceBalance)
	s.recorder.auditBalance(ctx, to, models.AuditActionCredit, destinationBalance-amount, destinationBalance)
	s.recorder.transactionRecorded(ctx, result.Debit)
	s.recorder.transactionRecorded(ctx, result.Credit)

	s.logger.Info("transfer completed",
		"from_account_number", from,
		"to_account_number", to,
		"amount", amount,
		"debit_id", result.Debit.ID,
		"credit_id", result.Credit.ID,
	)
	return result, nil
}

// Totals aggregates the transaction log for one account, or for the whole
// ledger when accountNumber is empty.
func (s *TransactionServiceImpl) Totals(ctx context.Context, accountNumber string) (*models.TransactionTotals, error) {
	if accountNumber != "" {
		if _, err := s.findAccount(ctx, accountNumber); err != nil {
			return nil, err
		}
	}

	totals := &models.TransactionTotals{
		AccountNumber: accountNumber,
		CountByType:   make(map[models.TransactionType]int, len(models.TransactionTypes)),
	}
	for _, t := range s.transactionRepo.List(ctx) {
		if accountNumber == "" || t.AccountNumber == accountNumber {
			totals.Add(t)
		}
	}
	return totals, nil
}

func (s *TransactionServiceImpl) Search(ctx context.Context, filter models.TransactionFilter) []*models.Transaction {
	now := s.clock()
	matches := s.transactionRepo.Filter(ctx, func(t *models.Transaction) bool {
		return filter.Match(t, now)
	})
	return newestFirst(matches)
}

func (s *TransactionServiceImpl) History(ctx context.Context, accountNumber string) ([]*models.Transaction, error) {
	if _, err := s.findAccount(ctx, accountNumber); err != nil {
		return nil, err
	}
	return s.Search(ctx, models.TransactionFilter{AccountNumber: accountNumber}), nil
}

func (s *TransactionServiceImpl) findAccount(ctx context.Context, accountNumber string) (models.Account, error) {
	account, err := s.accountRepo.Get(ctx, accountNumber)
	if err != nil {
		s.logger.Warn("account not found", "account_number", accountNumber)
		return nil, err
	}
	return account, nil
}

func (s *TransactionServiceImpl) newTransaction(accountNumber string, t models.TransactionType, amount, balanceAfter float64, at time.Time) *models.Transaction {
	return models.NewTransaction(s.ids.Next(idgen.Transaction), accountNumber, t, amount, balanceAfter, at)
}

// newestFirst orders by timestamp descending. Records sharing a second keep
// reverse append order, so the later of the two comes first.
func newestFirst(ts []*models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, len(ts))
	for i, t := range ts {
		out[len(ts)-1-i] = t
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
