package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// ArchiveProjectCommand contains the data needed to archive a project.
type ArchiveProjectCommand struct {
	ProjectID uuid.UUID
}

// ArchiveProjectHandler handles the ArchiveProjectCommand.
type ArchiveProjectHandler struct {
	projectRepo domain.ProjectRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	locks       *sharedApplication.ProjectLocks
	cache       SnapshotInvalidator
}

// NewArchiveProjectHandler creates a new ArchiveProjectHandler.
func NewArchiveProjectHandler(
	projectRepo domain.ProjectRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *sharedApplication.ProjectLocks,
	cache SnapshotInvalidator,
) *ArchiveProjectHandler {
	return &ArchiveProjectHandler{
		projectRepo: projectRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		locks:       locks,
		cache:       cache,
	}
}

// Handle executes the ArchiveProjectCommand under the project's lock.
func (h *ArchiveProjectHandler) Handle(ctx context.Context, cmd ArchiveProjectCommand) error {
	err := h.locks.WithLock(cmd.ProjectID, func() error {
		return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			project, err := h.projectRepo.FindByID(txCtx, cmd.ProjectID)
			if err != nil {
				return err
			}

			if err := project.Archive(); err != nil {
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
