package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/events"
	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type AccountService interface {
	OpenAccount(ctx context.Context, req *models.OpenAccountRequest) (models.Account, error)
	FindAccount(ctx context.Context, number string) (models.Account, error)
	ListAccounts(ctx context.Context) []models.Account
	TotalBalance(ctx context.Context) float64
	AccountDetails(ctx context.Context, number string) (*models.AccountDetails, error)
	AuditTrail(ctx context.Context, number string) ([]*models.AuditLog, error)
	ApplyMonthlyFees(ctx context.Context) ([]*models.Transaction, error)
}

type AccountServiceImpl struct {
	accountRepo     repository.AccountRepository
	customerRepo    repository.CustomerRepository
	transactionRepo repository.TransactionRepository
	auditRepo       repository.AuditRepository
	ids             *idgen.Generator
	recorder        *ledgerRecorder
	logger          *slog.Logger
	clock           func() time.Time
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	customerRepo repository.CustomerRepository,
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	ids *idgen.Generator,
	publisher events.Publisher,
	logger *slog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo:     accountRepo,
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		ids:             ids,
		recorder:        &ledgerRecorder{auditRepo: auditRepo, publisher: publisher, logger: logger},
		logger:          logger,
		clock:           time.Now,
	}
}

// OpenAccount creates an account funded with the initial deposit. The
// deposit is not recorded as a transaction.
func (s *AccountServiceImpl) OpenAccount(ctx context.Context, req *models.OpenAccountRequest) (models.Account, error) {
	customer, err := s.customerRepo.Get(ctx, req.CustomerID)
	if err != nil {
		s.logger.Warn("cannot open account for unknown customer",
			"customer_id", req.CustomerID,
		)
		return nil, err
	}
	accountType, err := models.ParseAccountType(req.Type)
	if err != nil {
		s.logger.Warn("invalid open account request", "error", err.Error())
		return nil, err
	}
	if !models.IsValidAmount(req.InitialDeposit) {
		s.logger.Warn("invalid initial deposit",
			"customer_id", req.CustomerID,
			"amount", req.InitialDeposit,
		)
		return nil, errors.ErrInvalidAmount
	}

	number := s.ids.Next(idgen.Account)
	var account models.Account
	switch accountType {
	case models.AccountTypeSavings:
		account, err = models.NewSavingsAccount(number, customer.ID, req.InitialDeposit)
	default:
		account, err = models.NewCheckingAccount(number, customer.ID, req.InitialDeposit)
	}
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Add(ctx, account); err != nil {
		s.logger.Error("failed to store account",
			"account_number", number,
			"error", err.Error(),
		)
		return nil, err
	}

	s.recorder.auditBalance(ctx, number, models.AuditActionCreate, 0, req.InitialDeposit)
	s.recorder.publish(ctx, events.AccountOpened, events.AccountOpenedEvent{
		AccountNumber:  number,
		CustomerID:     customer.ID,
		AccountType:    string(accountType),
		InitialDeposit: req.InitialDeposit,
	})

	s.logger.Info("account opened successfully",
		"account_number", number,
		"customer_id", customer.ID,
		"account_type", accountType,
	)
	return account, nil
}

func (s *AccountServiceImpl) FindAccount(ctx context.Context, number string) (models.Account, error) {
	account, err := s.accountRepo.Get(ctx, number)
	if err != nil {
		s.logger.Warn("account not found", "account_number", number)
		return nil, err
	}
	return account, nil
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context) []models.Account {
	return s.accountRepo.List(ctx)
}

func (s *AccountServiceImpl) TotalBalance(ctx context.Context) float64 {
	var total float64
	for _, a := range s.accountRepo.List(ctx) {
		total += a.Balance()
	}
	return total
}

// AccountDetails projects the account together with its owner's name.
func (s *AccountServiceImpl) AccountDetails(ctx context.Context, number string) (*models.AccountDetails, error) {
	account, err := s.FindAccount(ctx, number)
	if err != nil {
		return nil, err
	}
	details := account.Details()
	if customer, err := s.customerRepo.Get(ctx, account.CustomerID()); err == nil {
		details.CustomerName = customer.Name
	}
	return &details, nil
}

func (s *AccountServiceImpl) AuditTrail(ctx context.Context, number string) ([]*models.AuditLog, error) {
	if _, err := s.FindAccount(ctx, number); err != nil {
		return nil, err
	}
	return s.auditRepo.GetByEntityID(ctx, models.EntityTypeAccount, number)
}

// ApplyMonthlyFees charges every checking account whose owner does not have
// fees waived. Each charge is recorded as a withdrawal.
func (s *AccountServiceImpl) ApplyMonthlyFees(ctx context.Context) ([]*models.Transaction, error) {
	var charged []*models.Transaction
	for _, account := range s.accountRepo.List(ctx) {
		checking, ok := account.(*models.CheckingAccount)
		if !ok {
			continue
		}
		customer, err := s.customerRepo.Get(ctx, checking.CustomerID())
		if err != nil || customer.HasWaivedFees() {
			continue
		}

		fee, balance, applied := checking.ApplyMonthlyFee()
		if !applied {
			s.logger.Info("monthly fee skipped",
				"account_number", checking.Number(),
				"balance", balance,
			)
			continue
		}

		t := models.NewTransaction(s.ids.Next(idgen.Transaction), checking.Number(),
			models.TransactionWithdrawal, fee, balance, s.clock())
		s.transactionRepo.Append(ctx, t)
		s.recorder.auditBalance(ctx, checking.Number(), models.AuditActionDebit, balance+fee, balance)
		s.recorder.transactionRecorded(ctx, t)
		charged = append(charged, t)
	}

	s.logger.Info("monthly fees applied", "charged_accounts", len(charged))
	return charged, nil
}
