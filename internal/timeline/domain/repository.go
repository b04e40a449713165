package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTimelineNotFound is returned when a project has no milestone projection.
var ErrTimelineNotFound = errors.New("timeline not found")

// MilestoneRepository persists milestone projections. The projector replaces
// a project's rows wholesale on every recompute.
type MilestoneRepository interface {
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, milestones []*Milestone) error
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*Milestone, error)
	DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error
}
