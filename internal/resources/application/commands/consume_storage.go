package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/resources/domain"
	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
)

// ConsumeStorageCommand draws storage units from a project's quota.
type ConsumeStorageCommand struct {
	ProjectID uuid.UUID
	Units     float64
}

// ConsumeStorageResult reports the quota after consumption.
type ConsumeStorageResult struct {
	Used      float64
	Total     float64
	Remaining float64
	Unit      string
}

// ConsumeStorageHandler handles the ConsumeStorageCommand.
type ConsumeStorageHandler struct {
	ledgerRepo domain.LedgerRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	locks      *sharedApplication.ProjectLocks
}

// NewConsumeStorageHandler creates a new ConsumeStorageHandler.
func NewConsumeStorageHandler(
	ledgerRepo domain.LedgerRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *sharedApplication.ProjectLocks,
) *ConsumeStorageHandler {
	return &ConsumeStorageHandler{ledgerRepo: ledgerRepo, outboxRepo: outboxRepo, uow: uow, locks: locks}
}

// Handle executes the ConsumeStorageCommand under the project's lock.
func (h *ConsumeStorageHandler) Handle(ctx context.Context, cmd ConsumeStorageCommand) (*ConsumeStorageResult, error) {
	var result *ConsumeStorageResult

	err := h.locks.WithLock(cmd.ProjectID, func() error {
		return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			ledger, err := h.ledgerRepo.FindByProjectID(txCtx, cmd.ProjectID)
			if err != nil {
				return err
			}
			if err := ledger.ConsumeStorage(cmd.Units); err != nil {
				return err
			}
			if err := h.ledgerRepo.Save(txCtx, ledger); err != nil {
				return err
			}
			if err := ledgerEventsToOutbox(txCtx, h.outboxRepo, ledger); err != nil {
				return err
			}

			result = &ConsumeStorageResult{
				Used:      ledger.StorageUsed(),
				Total:     ledger.StorageTotal(),
				Remaining: ledger.StorageRemaining(),
				Unit:      ledger.StorageUnit(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
