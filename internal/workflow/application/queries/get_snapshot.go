package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// SnapshotCache is a read-side cache for project snapshots. A miss returns
// (nil, nil); failures degrade to the repository, never to an error.
type SnapshotCache interface {
	Get(ctx context.Context, projectID uuid.UUID) (*domain.ProjectSnapshot, error)
	Set(ctx context.Context, snapshot *domain.ProjectSnapshot) error
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

// GetProjectSnapshotQuery requests the read-only view of one project.
type GetProjectSnapshotQuery struct {
	ProjectID uuid.UUID
}

// GetProjectSnapshotHandler handles the GetProjectSnapshotQuery.
type GetProjectSnapshotHandler struct {
	projectRepo domain.ProjectRepository
	cache       SnapshotCache
}

// NewGetProjectSnapshotHandler creates a new GetProjectSnapshotHandler.
func NewGetProjectSnapshotHandler(projectRepo domain.ProjectRepository, cache SnapshotCache) *GetProjectSnapshotHandler {
	return &GetProjectSnapshotHandler{projectRepo: projectRepo, cache: cache}
}

// Handle executes the GetProjectSnapshotQuery.
func (h *GetProjectSnapshotHandler) Handle(ctx context.Context, query GetProjectSnapshotQuery) (*domain.ProjectSnapshot, error) {
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, query.ProjectID); err == nil && cached != nil {
			return cached, nil
		}
	}

	project, err := h.projectRepo.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}

	snapshot := project.Snapshot()

	if h.cache != nil {
		_ = h.cache.Set(ctx, &snapshot)
	}

	return &snapshot, nil
}
