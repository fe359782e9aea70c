package services

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stockdesk/internal/logger"
	"stockdesk/internal/models"
	"stockdesk/internal/pagination"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// Transaction names written to the audit log.
const (
	TxBlockedItems = "BlockedItems"
	TxMonitoring   = "Monitoring"
	TxSupplyRoom   = "SupplyRoom"
	TxPPE          = "PPE"
	TxCutPassword  = "CutPassword"
	TxConsolidated = "Consolidated"
	TxCatalog      = "Catalog"
	TxUsers        = "Users"
	TxQueries      = "Queries"
)

// DefaultAuditLimit is the number of entries ListRecent returns when no limit is given.
const DefaultAuditLimit = 10

var auditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stockdesk_audit_write_failures_total",
	Help: "Audit entries that could not be written.",
})

// auditService handles audit log recording.
type auditService struct {
	store *repository.Store
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(store *repository.Store) AuditServicer {
	return &auditService{store: store}
}

// NormalizeKind maps free-form kind names onto the known audit kinds.
// The unaccented spelling of alteração is accepted; anything else unknown becomes consulta.
func NormalizeKind(kind string) models.AuditKind {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case string(models.AuditInput), string(models.AuditOutput), string(models.AuditQuery), string(models.AuditMutation):
		return models.AuditKind(k)
	case "alteracao":
		return models.AuditMutation
	}
	return models.AuditQuery
}

// Record writes an audit entry. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Record(ctx context.Context, actor session.Identity, transaction string, kind models.AuditKind) {
	transaction = strings.TrimSpace(transaction)
	if transaction == "" {
		return
	}

	entry := &models.AuditLog{
		Transaction: transaction,
		Kind:        NormalizeKind(string(kind)),
	}
	if !actor.IsAnonymous() {
		name := actor.Username
		entry.Username = &name
	}

	// Audit writes do not trigger the mirror on their own; the operation
	// being audited already did.
	if err := s.store.DB(ctx).Create(entry).Error; err != nil {
		auditWriteFailures.Inc()
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"username", actor.Username,
			"transaction", transaction,
			"kind", entry.Kind,
		)
	}
}

// ListRecent returns the latest audit entries, most recent first.
func (s *auditService) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	var entries []models.AuditLog
	err := s.store.DB(ctx).
		Scopes(pagination.NewestFirst, pagination.Limit(limit)).
		Find(&entries).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	return entries, nil
}

// record is shared by the entity services.
func record(ctx context.Context, audit AuditServicer, actor session.Identity, transaction string, kind models.AuditKind) {
	if audit == nil {
		return
	}
	audit.Record(ctx, actor, transaction, kind)
}
