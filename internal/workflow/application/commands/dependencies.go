package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
)

// TimelineProjector recomputes milestone projections for a project. The
// workflow handlers call it synchronously after a successful command so
// derived timeline fields never lag stage facts.
type TimelineProjector interface {
	RecomputeProject(ctx context.Context, projectID uuid.UUID) error
}

// SnapshotInvalidator drops cached snapshots after a successful command.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

// stageEventsToOutbox stamps metadata on events and stores them in the
// outbox within the current transaction.
func stageEventsToOutbox(ctx context.Context, repo outbox.Repository, events []sharedDomain.DomainEvent) error {
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata())

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return repo.SaveBatch(ctx, msgs)
}
