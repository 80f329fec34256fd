package projections

import (
	"context"

	auditStore "flipfit/internal/adapters/storage/audit"
	domainAudit "flipfit/internal/domain/audit"
)

// AuditStore interface for audit trail queries.
type AuditStore interface {
	List(ctx context.Context, filter auditStore.Filter, limit, offset int) ([]domainAudit.Event, error)
	Count(ctx context.Context, filter auditStore.Filter) (int, error)
}
