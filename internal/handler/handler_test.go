package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ledgererrors "github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

func TestCustomerEndpoints(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/customers", map[string]any{"type": "premium", "name": "Kwame", "age": 52, "email": "kwame@example.com"})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[models.Customer](t, rec)
	if created.ID != "CUS001" || created.Type != models.CustomerTypePremium {
		t.Fatalf("unexpected customer %+v", created)
	}
	if s.persistence.autoSaves != 1 {
		t.Fatalf("autoSaves = %d, want 1", s.persistence.autoSaves)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/customers/CUS001", nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodGet, "/customers/CUS404", nil), http.StatusNotFound)

	list := decode[models.CustomerListResponse](t, s.do(t, http.MethodGet, "/customers", nil))
	if list.Count != 1 {
		t.Fatalf("count = %d", list.Count)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/customers", map[string]any{"type": "Gold", "name": ""})
	expectStatus(t, rec, http.StatusBadRequest)
	body := decode[u.BadRequestErrorResponse](t, rec)
	if len(body.Details) != 2 {
		t.Fatalf("details = %+v", body.Details)
	}

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("{not json"))
	raw := httptest.NewRecorder()
	s.router.ServeHTTP(raw, req)
	expectStatus(t, raw, http.StatusBadRequest)

	if s.persistence.autoSaves != 0 {
		t.Fatal("rejected requests must not trigger auto-save")
	}
}

func TestAccountEndpoints(t *testing.T) {
	s := newServer(t)
	savings, checking := s.seed(t)

	details := decode[models.AccountDetails](t, s.do(t, http.MethodGet, "/accounts/"+savings, nil))
	if details.Balance != 1000 || details.CustomerName != "Adwoa" || details.MinimumBalance != 500 {
		t.Fatalf("unexpected details %+v", details)
	}

	list := decode[models.AccountListResponse](t, s.do(t, http.MethodGet, "/accounts", nil))
	if list.Count != 2 || list.TotalBalance != 1100 {
		t.Fatalf("unexpected list %+v", list)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/accounts/ACC404", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/accounts", map[string]any{"customer_id": "CUS404", "type": "Savings", "initial_deposit": 10}), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/accounts", map[string]any{"customer_id": "CUS001", "type": "Brokerage", "initial_deposit": 10}), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodPost, "/accounts", map[string]any{"customer_id": "CUS001", "type": "Savings", "initial_deposit": 0}), http.StatusBadRequest)

	trail := decode[[]models.AuditLog](t, s.do(t, http.MethodGet, "/accounts/"+checking+"/audit", nil))
	if len(trail) != 1 || trail[0].Action != models.AuditActionCreate {
		t.Fatalf("unexpected audit trail %+v", trail)
	}
}

func TestDepositAndWithdrawalEndpoints(t *testing.T) {
	s := newServer(t)
	savings, checking := s.seed(t)
	saves := s.persistence.autoSaves

	rec := s.do(t, http.MethodPost, "/accounts/"+savings+"/deposits", map[string]any{"amount": 250})
	expectStatus(t, rec, http.StatusCreated)
	tx := decode[models.TransactionResponse](t, rec)
	if tx.Type != models.TransactionDeposit || tx.BalanceAfter != 1250 {
		t.Fatalf("unexpected deposit %+v", tx)
	}

	tests := []struct {
		name   string
		path   string
		amount float64
		want   int
	}{
		{"zero deposit", "/accounts/" + savings + "/deposits", 0, http.StatusBadRequest},
		{"unknown account", "/accounts/ACC404/deposits", 10, http.StatusNotFound},
		{"below minimum balance", "/accounts/" + savings + "/withdrawals", 800, http.StatusConflict},
		{"beyond overdraft", "/accounts/" + checking + "/withdrawals", 1200, http.StatusConflict},
		{"within overdraft", "/accounts/" + checking + "/withdrawals", 950, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do(t, http.MethodPost, tt.path, map[string]any{"amount": tt.amount}), tt.want)
		})
	}

	if got := s.persistence.autoSaves - saves; got != 2 {
		t.Fatalf("auto-saves after mutations = %d, want 2", got)
	}

	history := decode[models.TransactionListResponse](t, s.do(t, http.MethodGet, "/accounts/"+checking+"/transactions", nil))
	if history.Count != 1 || history.Totals == nil || history.Totals.TotalWithdrawals != 950 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestTransferEndpoint(t *testing.T) {
	s := newServer(t)
	savings, checking := s.seed(t)

	rec := s.do(t, http.MethodPost, "/transfers", map[string]any{"from_account_number": savings, "to_account_number": checking, "amount": 300})
	expectStatus(t, rec, http.StatusCreated)
	res := decode[models.TransferResponse](t, rec)
	if res.Debit.Type != models.TransactionTransferOut || res.Debit.BalanceAfter != 700 {
		t.Fatalf("unexpected debit %+v", res.Debit)
	}
	if res.Credit.Type != models.TransactionTransferIn || res.Credit.BalanceAfter != 400 {
		t.Fatalf("unexpected credit %+v", res.Credit)
	}
	if res.Debit.ID == res.Credit.ID {
		t.Fatal("debit and credit share an ID")
	}

	expectStatus(t, s.do(t, http.MethodPost, "/transfers", map[string]any{"from_account_number": savings, "to_account_number": savings, "amount": 1}), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodPost, "/transfers", map[string]any{"from_account_number": savings, "to_account_number": "ACC404", "amount": 1}), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/transfers", map[string]any{"from_account_number": savings, "to_account_number": checking, "amount": 500}), http.StatusConflict)
	expectStatus(t, s.do(t, http.MethodPost, "/transfers", map[string]any{"to_account_number": checking, "amount": 5}), http.StatusBadRequest)
}

func TestSearchAndSummaryEndpoints(t *testing.T) {
	s := newServer(t)
	savings, checking := s.seed(t)
	s.do(t, http.MethodPost, "/accounts/"+savings+"/deposits", map[string]any{"amount": 40})
	s.do(t, http.MethodPost, "/accounts/"+checking+"/withdrawals", map[string]any{"amount": 60})
	s.do(t, http.MethodPost, "/transfers", map[string]any{"from_account_number": savings, "to_account_number": checking, "amount": 100})

	all := decode[models.TransactionListResponse](t, s.do(t, http.MethodGet, "/transactions", nil))
	if all.Count != 4 || all.Transactions[0].ID != "TXN004" {
		t.Fatalf("unexpected search result %+v", all)
	}

	filtered := decode[models.TransactionListResponse](t, s.do(t, http.MethodGet, "/transactions?account="+checking+"&type=withdrawal&min=50&max=70&days=1", nil))
	if filtered.Count != 1 || filtered.Transactions[0].Amount != 60 {
		t.Fatalf("unexpected filtered result %+v", filtered)
	}

	for _, q := range []string{"type=REFUND", "min=abc", "max=-1", "days=x"} {
		expectStatus(t, s.do(t, http.MethodGet, "/transactions?"+q, nil), http.StatusBadRequest)
	}

	totals := decode[models.TransactionTotals](t, s.do(t, http.MethodGet, "/transactions/summary", nil))
	if totals.Count != 4 || totals.TotalDeposits != 40 || totals.TotalTransfersIn != 100 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := newServer(t)
	_, checking := s.seed(t)

	expectStatus(t, s.do(t, http.MethodPost, "/admin/save", nil), http.StatusOK)
	if s.persistence.saves != 1 {
		t.Fatalf("saves = %d, want 1", s.persistence.saves)
	}

	fees := decode[models.TransactionListResponse](t, s.do(t, http.MethodPost, "/admin/monthly-fees", nil))
	if fees.Count != 1 || fees.Transactions[0].AccountNumber != checking || fees.Transactions[0].BalanceAfter != 90 {
		t.Fatalf("unexpected fee run %+v", fees)
	}

	rec := s.do(t, http.MethodPost, "/admin/simulations", map[string]any{"account_number": checking, "deposits": 50, "withdrawals": 50, "amount": 1})
	expectStatus(t, rec, http.StatusOK)
	report := decode[struct {
		StartBalance float64 `json:"start_balance"`
		FinalBalance float64 `json:"final_balance"`
		Failed       int64   `json:"failed"`
	}](t, rec)
	if report.StartBalance != 90 || report.FinalBalance != 90 || report.Failed != 0 {
		t.Fatalf("unexpected simulation report %+v", report)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/admin/simulations", map[string]any{"account_number": "ACC404"}), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/admin/simulations", map[string]any{"account_number": checking, "deposits": -1}), http.StatusBadRequest)
}

func TestLedgerCannotBeReloadedAtRuntime(t *testing.T) {
	s := newServer(t)
	savings, _ := s.seed(t)

	expectStatus(t, s.do(t, http.MethodPost, "/admin/load", nil), http.StatusNotFound)
	if s.persistence.loads != 0 {
		t.Fatalf("loads = %d, want 0", s.persistence.loads)
	}

	rec := s.do(t, http.MethodPost, "/accounts/"+savings+"/deposits", map[string]any{"amount": 100})
	expectStatus(t, rec, http.StatusCreated)
	details := decode[models.AccountDetails](t, s.do(t, http.MethodGet, "/accounts/"+savings, nil))
	if tx := decode[models.TransactionResponse](t, rec); tx.BalanceAfter != details.Balance {
		t.Fatalf("recorded balance %v, live balance %v", tx.BalanceAfter, details.Balance)
	}
}

func TestAdminSaveFailureIsInternalError(t *testing.T) {
	s := newServer(t)
	s.persistence.err = errors.New("disk full")

	rec := s.do(t, http.MethodPost, "/admin/save", nil)
	expectStatus(t, rec, http.StatusInternalServerError)
	if body := decode[models.ErrorResponse](t, rec); body.Message != "" {
		t.Fatalf("internal details leaked: %+v", body)
	}
}

type failingAccounts struct{ stubAccountService }

func (failingAccounts) ApplyMonthlyFees(context.Context) ([]*models.Transaction, error) {
	return nil, errors.New("boom")
}

// stubAccountService satisfies service.AccountService with empty results.
type stubAccountService struct{}

func (stubAccountService) OpenAccount(context.Context, *models.OpenAccountRequest) (models.Account, error) {
	return nil, nil
}
func (stubAccountService) FindAccount(context.Context, string) (models.Account, error) {
	return nil, nil
}
func (stubAccountService) ListAccounts(context.Context) []models.Account { return nil }
func (stubAccountService) TotalBalance(context.Context) float64          { return 0 }
func (stubAccountService) AccountDetails(context.Context, string) (*models.AccountDetails, error) {
	return nil, nil
}
func (stubAccountService) AuditTrail(context.Context, string) ([]*models.AuditLog, error) {
	return nil, nil
}
func (stubAccountService) ApplyMonthlyFees(context.Context) ([]*models.Transaction, error) {
	return nil, nil
}

func TestMonthlyFeesServiceErrorIsInternalError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persistence := &fakePersistence{}
	h := NewAdminHandler(failingAccounts{}, persistence, 0, logger)

	rec := httptest.NewRecorder()
	h.ApplyMonthlyFees(rec, httptest.NewRequest(http.MethodPost, "/admin/monthly-fees", nil))
	expectStatus(t, rec, http.StatusInternalServerError)
	if persistence.autoSaves != 0 {
		t.Fatal("failed fee run must not auto-save")
	}
}

func TestServiceErrorLogLevels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{"rejection", ledgererrors.ErrInsufficientFunds, http.StatusConflict, `"level":"WARN"`},
		{"not found", ledgererrors.ErrAccountNotFound, http.StatusNotFound, `"level":"WARN"`},
		{"infrastructure", errors.New("disk full"), http.StatusInternalServerError, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			rec := httptest.NewRecorder()

			writeServiceError(rec, logger, tt.err, "transfer")

			expectStatus(t, rec, tt.status)
			if !strings.Contains(buf.String(), tt.level) {
				t.Fatalf("log %q does not contain %s", buf.String(), tt.level)
			}
		})
	}
}
