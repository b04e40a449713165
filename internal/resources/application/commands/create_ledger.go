// Package commands contains the write side of the resources context.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/resources/domain"
	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
)

// ledgerEventsToOutbox stages the aggregate's events for publication in the
// same transaction as the state change.
func ledgerEventsToOutbox(ctx context.Context, repo outbox.Repository, ledger *domain.ResourceLedger) error {
	events := ledger.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata())

	messages := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("staging event %s: %w", event.RoutingKey(), err)
		}
		messages = append(messages, msg)
	}
	return repo.SaveBatch(ctx, messages)
}

// CreateLedgerCommand provisions a project's resource ledger.
type CreateLedgerCommand struct {
	ProjectID    uuid.UUID
	StorageTotal float64
}

// CreateLedgerHandler handles the CreateLedgerCommand.
type CreateLedgerHandler struct {
	ledgerRepo domain.LedgerRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateLedgerHandler creates a new CreateLedgerHandler.
func NewCreateLedgerHandler(
	ledgerRepo domain.LedgerRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CreateLedgerHandler {
	return &CreateLedgerHandler{ledgerRepo: ledgerRepo, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the CreateLedgerCommand. Creating a ledger twice for the
// same project is an error; callers that want idempotence check first.
func (h *CreateLedgerHandler) Handle(ctx context.Context, cmd CreateLedgerCommand) (uuid.UUID, error) {
	var ledgerID uuid.UUID

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.ledgerRepo.FindByProjectID(txCtx, cmd.ProjectID)
		if err != nil && !errors.Is(err, domain.ErrLedgerNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: project %s", domain.ErrLedgerExists, cmd.ProjectID)
		}

		ledger, err := domain.NewResourceLedger(cmd.ProjectID, cmd.StorageTotal)
		if err != nil {
			return err
		}
		if err := h.ledgerRepo.Save(txCtx, ledger); err != nil {
			return err
		}
		if err := ledgerEventsToOutbox(txCtx, h.outboxRepo, ledger); err != nil {
			return err
		}

		ledgerID = ledger.ID()
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return ledgerID, nil
}
