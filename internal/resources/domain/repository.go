package domain

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository persists resource ledgers. Lookup is by project; each
// project has at most one ledger.
type LedgerRepository interface {
	Save(ctx context.Context, ledger *ResourceLedger) error
	FindByProjectID(ctx context.Context, projectID uuid.UUID) (*ResourceLedger, error)
}
