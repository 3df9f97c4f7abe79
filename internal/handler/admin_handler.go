package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

// AdminHandler exposes the operator actions: explicit save, the monthly fee
// run, and the concurrency simulation. Loading happens once at startup and is
// not reachable over HTTP.
type AdminHandler struct {
	accountService    service.AccountService
	persistence       service.PersistenceService
	simulationTimeout time.Duration
	logger            *slog.Logger
}

func NewAdminHandler(accountService service.AccountService, persistence service.PersistenceService, simulationTimeout time.Duration, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		accountService:    accountService,
		persistence:       persistence,
		simulationTimeout: simulationTimeout,
		logger:            logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	admin := router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/save", h.Save).Methods(http.MethodPost)
	admin.HandleFunc("/monthly-fees", h.ApplyMonthlyFees).Methods(http.MethodPost)
	admin.HandleFunc("/simulations", h.RunSimulation).Methods(http.MethodPost)
}

func (h *AdminHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.persistence.Save(r.Context()); err != nil {
		writeServiceError(w, h.logger, err, "save")
		return
	}
	u.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *AdminHandler) ApplyMonthlyFees(w http.ResponseWriter, r *http.Request) {
	charged, err := h.accountService.ApplyMonthlyFees(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "apply monthly fees")
		return
	}
	if len(charged) > 0 {
		h.persistence.AutoSave(r.Context())
	}
	u.WriteJSON(w, http.StatusOK, models.NewTransactionListResponse(charged, nil))
}

func (h *AdminHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	var req models.SimulationRequest
	if !decodeAndValidate(w, r, h.logger, &req, "simulation") {
		return
	}

	account, err := h.accountService.FindAccount(r.Context(), req.AccountNumber)
	if err != nil {
		writeServiceError(w, h.logger, err, "simulation")
		return
	}

	report, err := service.RunSimulation(r.Context(), account, service.SimulationConfig{
		Deposits:    req.Deposits,
		Withdrawals: req.Withdrawals,
		Amount:      req.Amount,
		Timeout:     h.simulationTimeout,
	}, h.logger)
	if err != nil {
		writeServiceError(w, h.logger, err, "simulation")
		return
	}
	h.persistence.AutoSave(r.Context())

	u.WriteJSON(w, http.StatusOK, report)
}
