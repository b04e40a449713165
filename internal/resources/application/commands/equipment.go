package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/resources/domain"
	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
)

// AllocateEquipmentCommand adds equipment to a project's ledger.
type AllocateEquipmentCommand struct {
	ProjectID uuid.UUID
	ItemRef   string
	Quantity  int
}

// MarkEquipmentCommand moves an equipment line to in_use or returned.
type MarkEquipmentCommand struct {
	ProjectID uuid.UUID
	ItemRef   string
}

// EquipmentHandler handles the equipment commands against one ledger.
type EquipmentHandler struct {
	ledgerRepo domain.LedgerRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	locks      *sharedApplication.ProjectLocks
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(
	ledgerRepo domain.LedgerRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *sharedApplication.ProjectLocks,
) *EquipmentHandler {
	return &EquipmentHandler{ledgerRepo: ledgerRepo, outboxRepo: outboxRepo, uow: uow, locks: locks}
}

// Allocate executes an AllocateEquipmentCommand under the project's lock.
func (h *EquipmentHandler) Allocate(ctx context.Context, cmd AllocateEquipmentCommand) error {
	return h.mutate(ctx, cmd.ProjectID, func(ledger *domain.ResourceLedger) error {
		return ledger.AllocateEquipment(cmd.ItemRef, cmd.Quantity)
	})
}

// MarkInUse moves an item into use.
func (h *EquipmentHandler) MarkInUse(ctx context.Context, cmd MarkEquipmentCommand) error {
	return h.mutate(ctx, cmd.ProjectID, func(ledger *domain.ResourceLedger) error {
		return ledger.MarkInUse(cmd.ItemRef)
	})
}

// MarkReturned returns an item.
func (h *EquipmentHandler) MarkReturned(ctx context.Context, cmd MarkEquipmentCommand) error {
	return h.mutate(ctx, cmd.ProjectID, func(ledger *domain.ResourceLedger) error {
		return ledger.MarkReturned(cmd.ItemRef)
	})
}

func (h *EquipmentHandler) mutate(ctx context.Context, projectID uuid.UUID, fn func(*domain.ResourceLedger) error) error {
	return h.locks.WithLock(projectID, func() error {
		return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			ledger, err := h.ledgerRepo.FindByProjectID(txCtx, projectID)
			if err != nil {
				return err
			}
			if err := fn(ledger); err != nil {
				return err
			}
			if err := h.ledgerRepo.Save(txCtx, ledger); err != nil {
				return err
			}
			return ledgerEventsToOutbox(txCtx, h.outboxRepo, ledger)
		})
	})
}
