package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// AdvanceStageCommand contains the data needed to transition a stage.
type AdvanceStageCommand struct {
	ProjectID    uuid.UUID
	StageID      uuid.UUID
	TargetStatus string
}

// AdvanceStageResult contains the result of a stage transition.
type AdvanceStageResult struct {
	ProjectPhase   string
	CurrentStageID *uuid.UUID
}

// AdvanceStageHandler handles the AdvanceStageCommand.
type AdvanceStageHandler struct {
	projectRepo domain.ProjectRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	locks       *sharedApplication.ProjectLocks
	projector   TimelineProjector
	cache       SnapshotInvalidator
}

// NewAdvanceStageHandler creates a new AdvanceStageHandler.
func NewAdvanceStageHandler(
	projectRepo domain.ProjectRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *sharedApplication.ProjectLocks,
	projector TimelineProjector,
	cache SnapshotInvalidator,
) *AdvanceStageHandler {
	return &AdvanceStageHandler{
		projectRepo: projectRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		locks:       locks,
		projector:   projector,
		cache:       cache,
	}
}

// Handle executes the AdvanceStageCommand under the project's lock.
func (h *AdvanceStageHandler) Handle(ctx context.Context, cmd AdvanceStageCommand) (*AdvanceStageResult, error) {
	target := domain.StageStatus(cmd.TargetStatus)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, cmd.TargetStatus)
	}

	var result *AdvanceStageResult

	err := h.locks.WithLock(cmd.ProjectID, func() error {
		return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			project, err := h.projectRepo.FindByID(txCtx, cmd.ProjectID)
			if err != nil {
				return err
			}

			if err := project.AdvanceStage(cmd.StageID, target); err != nil {
				return err
			}

			if err := h.projectRepo.Save(txCtx, project); err != nil {
				return err
			}

			if err := stageEventsToOutbox(txCtx, h.outboxRepo, project.DomainEvents()); err != nil {
				return err
			}

			result = &AdvanceStageResult{
				ProjectPhase:   project.Phase().String(),
				CurrentStageID: project.CurrentStageID(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Keep the milestone projection in step with the stage facts.
	if h.projector != nil {
		if err := h.projector.RecomputeProject(ctx, cmd.ProjectID); err != nil {
			return nil, err
		}
	}
	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, cmd.ProjectID)
	}

	return result, nil
}
