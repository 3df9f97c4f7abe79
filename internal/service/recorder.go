package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/riteshkumar/account-ledger/internal/events"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

// ledgerRecorder writes the side records of a balance change: the audit
// entry and the published event. Neither can fail the ledger operation.
type ledgerRecorder struct {
	auditRepo repository.AuditRepository
	publisher events.Publisher
	logger    *slog.Logger
}

func (r *ledgerRecorder) auditBalance(ctx context.Context, accountNumber, action string, oldBalance, newBalance float64) {
	var oldValue json.RawMessage
	if action != models.AuditActionCreate {
		oldValue, _ = json.Marshal(models.AccountBalanceSnapshot{
			AccountNumber: accountNumber,
			Balance:       oldBalance,
		})
	}
	newValue, _ := json.Marshal(models.AccountBalanceSnapshot{
		AccountNumber: accountNumber,
		Balance:       newBalance,
	})

	auditLog := &models.AuditLog{
		EntityType: models.EntityTypeAccount,
		EntityID:   accountNumber,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := r.auditRepo.Create(ctx, auditLog); err != nil {
		r.logger.Error("failed to create audit log",
			"account_number", accountNumber,
			"action", action,
			"error", err.Error(),
		)
	}
}

func (r *ledgerRecorder) transactionRecorded(ctx context.Context, t *models.Transaction) {
	r.publish(ctx, events.TransactionRecorded, events.TransactionRecordedEvent{
		TransactionID: t.ID,
		AccountNumber: t.AccountNumber,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
	})
}

func (r *ledgerRecorder) publish(ctx context.Context, eventType string, data any) {
	if err := r.publisher.Publish(ctx, events.LedgerStream, eventType, data); err != nil {
		r.logger.Warn("failed to publish event",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
