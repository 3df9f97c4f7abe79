package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/events"
	"github.com/riteshkumar/account-ledger/internal/idgen"
	"github.com/riteshkumar/account-ledger/internal/repository"
	"github.com/riteshkumar/account-ledger/internal/service"
)

type fakePersistence struct {
	autoSaves int
	saves     int
	loads     int
	err       error
}

func (f *fakePersistence) Load(ctx context.Context) (*service.LoadReport, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return &service.LoadReport{Customers: 1}, nil
}

func (f *fakePersistence) Save(ctx context.Context) error {
	f.saves++
	return f.err
}

func (f *fakePersistence) AutoSave(ctx context.Context) { f.autoSaves++ }

type server struct {
	router      *mux.Router
	persistence *fakePersistence
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	customers := repository.NewCustomerRepository()
	accounts := repository.NewAccountRepository()
	transactions := repository.NewTransactionRepository()
	audits := repository.NewAuditRepository()
	ids := idgen.New()
	publisher := events.NopPublisher{}

	customerSvc := service.NewCustomerService(customers, ids, logger)
	accountSvc := service.NewAccountService(accounts, customers, transactions, audits, ids, publisher, logger)
	txSvc := service.NewTransactionService(accounts, transactions, audits, ids, publisher, logger)
	persistence := &fakePersistence{}

	router := mux.NewRouter()
	NewCustomerHandler(customerSvc, persistence, logger).RegisterRoutes(router)
	NewAccountHandler(accountSvc, txSvc, persistence, logger).RegisterRoutes(router)
	NewTransactionHandler(txSvc, persistence, logger).RegisterRoutes(router)
	NewAdminHandler(accountSvc, persistence, 5*time.Second, logger).RegisterRoutes(router)

	return &server{router: router, persistence: persistence}
}

func (s *server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", rec.Code, want, rec.Body.String())
	}
}

// seed creates a regular customer with one savings and one checking account.
func (s *server) seed(t *testing.T) (savings, checking string) {
	t.Helper()
	expectStatus(t, s.do(t, http.MethodPost, "/customers", map[string]any{"type": "Regular", "name": "Adwoa", "age": 28}), http.StatusCreated)
	rec := s.do(t, http.MethodPost, "/accounts", map[string]any{"customer_id": "CUS001", "type": "Savings", "initial_deposit": 1000})
	expectStatus(t, rec, http.StatusCreated)
	rec = s.do(t, http.MethodPost, "/accounts", map[string]any{"customer_id": "CUS001", "type": "Checking", "initial_deposit": 100})
	expectStatus(t, rec, http.StatusCreated)
	return "ACC001", "ACC002"
}
