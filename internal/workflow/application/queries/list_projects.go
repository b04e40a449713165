package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// ProjectSummary is one row in a project listing.
type ProjectSummary struct {
	ID           uuid.UUID
	Name         string
	Priority     string
	Phase        string
	StageCount   int
	DoneStages   int
	PlannedStart time.Time
	Archived     bool
}

// ListProjectsQuery requests a filtered project listing.
type ListProjectsQuery struct {
	IncludeArchived bool
	Phase           string
	Priority        string
}

// ListProjectsHandler handles the ListProjectsQuery.
type ListProjectsHandler struct {
	projectRepo domain.ProjectRepository
}

// NewListProjectsHandler creates a new ListProjectsHandler.
func NewListProjectsHandler(projectRepo domain.ProjectRepository) *ListProjectsHandler {
	return &ListProjectsHandler{projectRepo: projectRepo}
}

// Handle executes the ListProjectsQuery.
func (h *ListProjectsHandler) Handle(ctx context.Context, query ListProjectsQuery) ([]ProjectSummary, error) {
	filter := domain.ProjectFilter{IncludeArchived: query.IncludeArchived}
	if query.Phase != "" {
		phase := domain.Phase(query.Phase)
		filter.Phase = &phase
	}
	if query.Priority != "" {
		priority := domain.Priority(query.Priority)
		filter.Priority = &priority
	}

	projects, err := h.projectRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, project := range projects {
		done := 0
		for _, stage := range project.Stages() {
			if stage.Status().IsTerminal() {
				done++
			}
		}
		summaries = append(summaries, ProjectSummary{
			ID:           project.ID(),
			Name:         project.Name(),
			Priority:     project.Priority().String(),
			Phase:        project.Phase().String(),
			StageCount:   len(project.Stages()),
			DoneStages:   done,
			PlannedStart: project.PlannedStart(),
			Archived:     project.IsArchived(),
		})
	}

	return summaries, nil
}
