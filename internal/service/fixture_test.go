package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

type ledger struct {
	customers    *repository.InMemoryCustomerRepository
	accounts     *repository.InMemoryAccountRepository
	transactions *repository.InMemoryTransactionRepository
	audits       *repository.InMemoryAuditRepository
	ids          *idgen.Generator
	publisher    *recordingPublisher
	logger       *slog.Logger

	customerSvc *CustomerServiceImpl
	accountSvc  *AccountServiceImpl
	txSvc       *TransactionServiceImpl
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	l := &ledger{
		customers:    repository.NewCustomerRepository(),
		accounts:     repository.NewAccountRepository(),
		transactions: repository.NewTransactionRepository(),
		audits:       repository.NewAuditRepository(),
		ids:          idgen.New(),
		publisher:    &recordingPublisher{},
		logger:       testLogger(),
	}
	l.customerSvc = NewCustomerService(l.customers, l.ids, l.logger)
	l.accountSvc = NewAccountService(l.accounts, l.customers, l.transactions, l.audits, l.ids, l.publisher, l.logger)
	l.txSvc = NewTransactionService(l.accounts, l.transactions, l.audits, l.ids, l.publisher, l.logger)
	return l
}

func (l *ledger) customer(t *testing.T, customerType string) *models.Customer {
	t.Helper()
	c, err := l.customerSvc.CreateCustomer(context.Background(), &models.CreateCustomerRequest{
		Type: customerType,
		Name: "Test " + customerType,
		Age:  30,
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	return c
}

func (l *ledger) open(t *testing.T, customerID string, accountType models.AccountType, deposit float64) models.Account {
	t.Helper()
	a, err := l.accountSvc.OpenAccount(context.Background(), &models.OpenAccountRequest{
		CustomerID:     customerID,
		Type:           string(accountType),
		InitialDeposit: deposit,
	})
	if err != nil {
		t.Fatalf("OpenAccount: %v", err)
	}
	return a
}
