package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	IncludeArchived bool
	Phase           *Phase
	Priority        *Priority
}

// ProjectRepository defines the persistence interface for projects.
type ProjectRepository interface {
	Save(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)
}
