package ports

import (
	"context"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// AuthEventRecorder accepts audit events. Implementations must not block the
// caller for I/O.
type AuthEventRecorder interface {
	Record(ctx context.Context, event domain.AuthEvent)
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	InsertAuthEvent(ctx context.Context, event domain.AuthEvent) error
}
