package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type TransactionHandler struct {
	transactionService service.TransactionService
	persistence        service.PersistenceService
	logger             *slog.Logger
}

func NewTransactionHandler(transactionService service.TransactionService, persistence service.PersistenceService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		persistence:        persistence,
		logger:             logger,
	}
}

func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transfers", h.Transfer).Methods(http.MethodPost)
	router.HandleFunc("/transactions", h.Search).Methods(http.MethodGet)
	router.HandleFunc("/transactions/summary", h.Summary).Methods(http.MethodGet)
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if !decodeAndValidate(w, r, h.logger, &req, "transfer") {
		return
	}

	result, err := h.transactionService.Transfer(r.Context(), req.FromAccountNumber, req.ToAccountNumber, req.Amount)
	if err != nil {
		writeServiceError(w, h.logger, err, "transfer")
		return
	}
	h.persistence.AutoSave(r.Context())

	u.WriteJSON(w, http.StatusCreated, models.TransferResponse{
		Debit:  models.NewTransactionResponse(result.Debit),
		Credit: models.NewTransactionResponse(result.Credit),
	})
}

// Search accepts account, type, min, max and days query parameters, all
// optional.
func (h *TransactionHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.logger.Warn("invalid transaction search", "error", err.Error())
		writeServiceError(w, h.logger, err, "search transactions")
		return
	}

	matches := h.transactionService.Search(r.Context(), filter)
	u.WriteJSON(w, http.StatusOK, models.NewTransactionListResponse(matches, nil))
}

func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.transactionService.Totals(r.Context(), "")
	if err != nil {
		writeServiceError(w, h.logger, err, "transaction summary")
		return
	}
	u.WriteJSON(w, http.StatusOK, totals)
}

func parseFilter(q url.Values) (models.TransactionFilter, error) {
	filter := models.TransactionFilter{AccountNumber: q.Get("account")}

	if v := q.Get("type"); v != "" {
		t, err := models.ParseTransactionType(v)
		if err != nil {
			return filter, errors.NewValidationError("type", err.Error())
		}
		filter.Type = t
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{{"min", &filter.MinAmount}, {"max", &filter.MaxAmount}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return filter, errors.NewValidationError(p.name, "must be a non-negative number")
		}
		*p.dst = f
	}

	if v := q.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return filter, errors.NewValidationError("days", "must be a non-negative integer")
		}
		filter.Days = days
	}
	return filter, nil
}
