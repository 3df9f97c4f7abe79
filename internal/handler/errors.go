package handler

import (
	"errors"
	"log/slog"
	"net/http"

	ledgererrors "github.com/riteshkumar/account-ledger/internal/errors"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

// writeServiceError maps ledger errors onto HTTP statuses. Rejections are the
// caller's problem and are only echoed back; anything else is logged.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, operation string) {
	if ledgererrors.IsRejection(err) {
		logger.Warn(operation+" rejected", "error", err.Error())
	}
	switch {
	case errors.Is(err, ledgererrors.ErrAccountNotFound):
		u.WriteError(w, http.StatusNotFound, "account not found", err.Error())
	case errors.Is(err, ledgererrors.ErrCustomerNotFound):
		u.WriteError(w, http.StatusNotFound, "customer not found", err.Error())
	case ledgererrors.IsAlreadyExists(err):
		u.WriteError(w, http.StatusConflict, "already exists", err.Error())
	case ledgererrors.IsInsufficientFunds(err):
		u.WriteError(w, http.StatusConflict, "insufficient funds", err.Error())
	case ledgererrors.IsOverdraftExceeded(err):
		u.WriteError(w, http.StatusConflict, "overdraft limit exceeded", err.Error())
	case ledgererrors.IsInvalidAmount(err):
		u.WriteError(w, http.StatusBadRequest, "invalid amount", err.Error())
	case errors.Is(err, ledgererrors.ErrSameAccount):
		u.WriteError(w, http.StatusBadRequest, "same source and destination account", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidAccountType), errors.Is(err, ledgererrors.ErrInvalidCustomerType):
		u.WriteError(w, http.StatusBadRequest, "invalid type", err.Error())
	case ledgererrors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	case errors.Is(err, ledgererrors.ErrSimulationTimeout):
		logger.Error("simulation timed out", "error", err.Error())
		u.WriteError(w, http.StatusGatewayTimeout, "simulation timed out", err.Error())
	default:
		logger.Error("internal server error during "+operation, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

// decodeAndValidate decodes the body into req and runs its validate tags.
// It writes the 400 response itself and reports false when the request is
// unusable.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, req any, operation string) bool {
	if err := u.DecodeJSON(r, req); err != nil {
		logger.Warn("invalid "+operation+" request", "error", err.Error())
		u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
		return false
	}
	if errs := u.ValidateRequest(req); errs != nil {
		logger.Warn("invalid "+operation+" request", "fields", len(errs))
		u.WriteValidationError(w, errs)
		return false
	}
	return true
}
