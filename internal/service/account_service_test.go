package service

import (
	"context"
	"errors"
	"testing"

	ledgererrors "github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/events"
	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/models"
)

func TestCreateCustomer(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c, err := l.customerSvc.CreateCustomer(ctx, &models.CreateCustomerRequest{Type: "premium", Name: "  Efua  ", Age: 52})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "CUS001" || c.Type != models.CustomerTypePremium || c.Name != "Efua" {
		t.Fatalf("unexpected customer %+v", c)
	}

	if _, err := l.customerSvc.CreateCustomer(ctx, &models.CreateCustomerRequest{Type: "Gold", Name: "X"}); !errors.Is(err, ledgererrors.ErrInvalidCustomerType) {
		t.Fatalf("want ErrInvalidCustomerType, got %v", err)
	}
	if _, err := l.customerSvc.CreateCustomer(ctx, &models.CreateCustomerRequest{Type: "Regular", Name: " "}); !ledgererrors.IsValidationError(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, err := l.customerSvc.FindCustomer(ctx, "CUS404"); !errors.Is(err, ledgererrors.ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
}

func TestOpenAccount(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.customer(t, "Regular")

	a := l.open(t, c.ID, models.AccountTypeSavings, 1000)
	if a.Number() != "ACC001" || a.Balance() != 1000 || a.Type() != models.AccountTypeSavings {
		t.Fatalf("unexpected account %+v", a.Details())
	}
	if l.transactions.Count(ctx) != 0 {
		t.Fatal("opening an account must not record a transaction")
	}
	if l.publisher.count(events.AccountOpened) != 1 {
		t.Fatal("expected an account.opened event")
	}

	trail, err := l.accountSvc.AuditTrail(ctx, "ACC001")
	if err != nil {
		t.Fatal(err)
	}
	if len(trail) != 1 || trail[0].Action != models.AuditActionCreate || trail[0].OldValue != nil {
		t.Fatalf("unexpected audit trail %+v", trail)
	}
}

func TestOpenAccountRejections(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.customer(t, "Regular")

	tests := []struct {
		name string
		req  models.OpenAccountRequest
		want error
	}{
		{"unknown customer", models.OpenAccountRequest{CustomerID: "CUS999", Type: "Savings", InitialDeposit: 100}, ledgererrors.ErrCustomerNotFound},
		{"unknown type", models.OpenAccountRequest{CustomerID: c.ID, Type: "Brokerage", InitialDeposit: 100}, ledgererrors.ErrInvalidAccountType},
		{"zero deposit", models.OpenAccountRequest{CustomerID: c.ID, Type: "Checking", InitialDeposit: 0}, ledgererrors.ErrInvalidAmount},
		{"negative deposit", models.OpenAccountRequest{CustomerID: c.ID, Type: "Savings", InitialDeposit: -1}, ledgererrors.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := l.accountSvc.OpenAccount(ctx, &req); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
	if l.ids.Current(idgen.Account) != 0 {
		t.Fatal("rejected requests must not consume account numbers")
	}
	if l.accounts.Count(ctx) != 0 {
		t.Fatal("no account should have been stored")
	}
}

func TestOpenAccountSurvivesPublisherFailure(t *testing.T) {
	l := newLedger(t)
	l.publisher.err = errors.New("redis down")
	c := l.customer(t, "Regular")

	if _, err := l.accountSvc.OpenAccount(context.Background(), &models.OpenAccountRequest{
		CustomerID: c.ID, Type: "Checking", InitialDeposit: 50,
	}); err != nil {
		t.Fatalf("publisher failure must not fail the operation: %v", err)
	}
}

func TestThousandAccountsHaveIncreasingNumbers(t *testing.T) {
	l := newLedger(t)
	c := l.customer(t, "Regular")

	prev := 0
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		a := l.open(t, c.ID, models.AccountTypeChecking, 1)
		n, ok := idgen.Suffix(idgen.Account, a.Number())
		if !ok || n <= prev {
			t.Fatalf("account %d: number %s does not increase past %d", i, a.Number(), prev)
		}
		if seen[a.Number()] {
			t.Fatalf("duplicate number %s", a.Number())
		}
		seen[a.Number()] = true
		prev = n
	}
	if len(seen) != 1000 {
		t.Fatalf("got %d distinct numbers", len(seen))
	}
}

func TestAccountDetailsAndTotals(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.customer(t, "Regular")
	l.open(t, c.ID, models.AccountTypeSavings, 1000)
	l.open(t, c.ID, models.AccountTypeChecking, 250.5)

	d, err := l.accountSvc.AccountDetails(ctx, "ACC002")
	if err != nil {
		t.Fatal(err)
	}
	if d.CustomerName != c.Name || d.OverdraftLimit != models.CheckingOverdraftLimit {
		t.Fatalf("unexpected details %+v", d)
	}
	if got := l.accountSvc.TotalBalance(ctx); got != 1250.5 {
		t.Fatalf("TotalBalance = %v", got)
	}
	if _, err := l.accountSvc.AccountDetails(ctx, "ACC404"); !errors.Is(err, ledgererrors.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestApplyMonthlyFees(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	regular := l.customer(t, "Regular")
	premium := l.customer(t, "Premium")

	charged := l.open(t, regular.ID, models.AccountTypeChecking, 100)
	low := l.open(t, regular.ID, models.AccountTypeChecking, 5)
	waived := l.open(t, premium.ID, models.AccountTypeChecking, 100)
	savings := l.open(t, regular.ID, models.AccountTypeSavings, 1000)

	txs, err := l.accountSvc.ApplyMonthlyFees(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].AccountNumber != charged.Number() || txs[0].Type != models.TransactionWithdrawal {
		t.Fatalf("unexpected fee transactions %+v", txs)
	}
	if charged.Balance() != 90 || txs[0].BalanceAfter != 90 {
		t.Fatalf("charged balance = %v", charged.Balance())
	}
	if low.Balance() != 5 || waived.Balance() != 100 || savings.Balance() != 1000 {
		t.Fatalf("balances changed: low=%v waived=%v savings=%v", low.Balance(), waived.Balance(), savings.Balance())
	}
	if l.transactions.Count(ctx) != 1 {
		t.Fatalf("transaction count = %d", l.transactions.Count(ctx))
	}
}
