package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// UpdateStageProgressCommand contains the data needed to record progress.
type UpdateStageProgressCommand struct {
	ProjectID uuid.UUID
	StageID   uuid.UUID
	Progress  int
}

// UpdateStageProgressHandler handles the UpdateStageProgressCommand.
type UpdateStageProgressHandler struct {
	projectRepo domain.ProjectRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	locks       *sharedApplication.ProjectLocks
	cache       SnapshotInvalidator
}

// NewUpdateStageProgressHandler creates a new UpdateStageProgressHandler.
func NewUpdateStageProgressHandler(
	projectRepo domain.ProjectRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *sharedApplication.ProjectLocks,
	cache SnapshotInvalidator,
) *UpdateStageProgressHandler {
	return &UpdateStageProgressHandler{
		projectRepo: projectRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		locks:       locks,
		cache:       cache,
	}
}

// Handle executes the UpdateStageProgressCommand under the project's lock.
func (h *UpdateStageProgressHandler) Handle(ctx context.Context, cmd UpdateStageProgressCommand) error {
	err := h.locks.WithLock(cmd.ProjectID, func() error {
		return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			project, err := h.projectRepo.FindByID(txCtx, cmd.ProjectID)
			if err != nil {
				return err
			}

			if err := project.UpdateStageProgress(cmd.StageID, cmd.Progress); err != nil {
				return err
			}

			if err := h.projectRepo.Save(txCtx, project); err != nil {
				return err
			}

			return stageEventsToOutbox(txCtx, h.outboxRepo, project.DomainEvents())
		})
	})
	if err != nil {
		return err
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, cmd.ProjectID)
	}
	return nil
}
