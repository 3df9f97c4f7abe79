package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riteshkumar/account-ledger/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByEntityID(ctx context.Context, entityType, entityID string) ([]*models.AuditLog, error)
}

// InMemoryAuditRepository keeps the balance audit trail for the lifetime of
// the process. It is not part of the persisted snapshot.
type InMemoryAuditRepository struct {
	mu   sync.RWMutex
	logs []*models.AuditLog
}

func NewAuditRepository() *InMemoryAuditRepository {
	return &InMemoryAuditRepository{}
}

// Create assigns the entry an ID and creation time before storing it.
func (r *InMemoryAuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.logs = append(r.logs, log)
	r.mu.Unlock()
	return nil
}

// GetByEntityID returns the entries for an entity, newest first.
func (r *InMemoryAuditRepository) GetByEntityID(ctx context.Context, entityType, entityID string) ([]*models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*models.AuditLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if l := r.logs[i]; l.EntityType == entityType && l.EntityID == entityID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}
