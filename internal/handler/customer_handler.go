package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type CustomerHandler struct {
	customerService service.CustomerService
	persistence     service.PersistenceService
	logger          *slog.Logger
}

func NewCustomerHandler(customerService service.CustomerService, persistence service.PersistenceService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		persistence:     persistence,
		logger:          logger,
	}
}

func (h *CustomerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	router.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	router.HandleFunc("/customers/{id}", h.GetCustomer).Methods(http.MethodGet)
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if !decodeAndValidate(w, r, h.logger, &req, "create customer") {
		return
	}

	customer, err := h.customerService.CreateCustomer(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "create customer")
		return
	}
	h.persistence.AutoSave(r.Context())

	u.WriteJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.customerService.ListCustomers(r.Context())
	u.WriteJSON(w, http.StatusOK, models.CustomerListResponse{
		Customers: customers,
		Count:     len(customers),
	})
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customerService.FindCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err, "get customer")
		return
	}
	u.WriteJSON(w, http.StatusOK, customer)
}
