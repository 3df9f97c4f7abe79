package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type AccountHandler struct {
	accountService     service.AccountService
	transactionService service.TransactionService
	persistence        service.PersistenceService
	logger             *slog.Logger
}

func NewAccountHandler(
	accountService service.AccountService,
	transactionService service.TransactionService,
	persistence service.PersistenceService,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		transactionService: transactionService,
		persistence:        persistence,
		logger:             logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts", h.OpenAccount).Methods(http.MethodPost)
	router.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}", h.GetAccount).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/transactions", h.History).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/audit", h.AuditTrail).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/deposits", h.Deposit).Methods(http.MethodPost)
	router.HandleFunc("/accounts/{id}/withdrawals", h.Withdraw).Methods(http.MethodPost)
}

func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req models.OpenAccountRequest
	if !decodeAndValidate(w, r, h.logger, &req, "open account") {
		return
	}

	account, err := h.accountService.OpenAccount(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "open account")
		return
	}
	h.persistence.AutoSave(r.Context())

	u.WriteJSON(w, http.StatusCreated, account.Details())
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.accountService.ListAccounts(r.Context())
	details := make([]models.AccountDetails, 0, len(accounts))
	for _, a := range accounts {
		details = append(details, a.Details())
	}

	u.WriteJSON(w, http.StatusOK, models.AccountListResponse{
		Accounts:     details,
		Count:        len(details),
		TotalBalance: h.accountService.TotalBalance(r.Context()),
	})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	details, err := h.accountService.AccountDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err, "get account")
		return
	}
	u.WriteJSON(w, http.StatusOK, details)
}

func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["id"]

	history, err := h.transactionService.History(r.Context(), accountNumber)
	if err != nil {
		writeServiceError(w, h.logger, err, "account history")
		return
	}
	totals, err := h.transactionService.Totals(r.Context(), accountNumber)
	if err != nil {
		writeServiceError(w, h.logger, err, "account history")
		return
	}

	u.WriteJSON(w, http.StatusOK, models.NewTransactionListResponse(history, totals))
}

func (h *AccountHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	trail, err := h.accountService.AuditTrail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err, "audit trail")
		return
	}
	u.WriteJSON(w, http.StatusOK, trail)
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, "deposit", h.transactionService.ProcessDeposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, "withdrawal", h.transactionService.ProcessWithdrawal)
}

type amountOperation func(ctx context.Context, accountNumber string, amount float64) (*models.Transaction, error)

func (h *AccountHandler) applyAmount(w http.ResponseWriter, r *http.Request, operation string, apply amountOperation) {
	var req models.AmountRequest
	if !decodeAndValidate(w, r, h.logger, &req, operation) {
		return
	}

	t, err := apply(r.Context(), mux.Vars(r)["id"], req.Amount)
	if err != nil {
		writeServiceError(w, h.logger, err, operation)
		return
	}
	h.persistence.AutoSave(r.Context())

	u.WriteJSON(w, http.StatusCreated, models.NewTransactionResponse(t))
}
