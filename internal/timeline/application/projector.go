// Package application contains the milestone projector and timeline queries.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/timeline/domain"
	workflowDomain "github.com/lenslate/darkroom/internal/workflow/domain"
)

// Projector recomputes a project's milestone projection from stage facts.
// The projection is derived state only; stage rows remain the source of
// truth and the whole set is rebuilt on every call.
type Projector struct {
	projectRepo   workflowDomain.ProjectRepository
	milestoneRepo domain.MilestoneRepository
	now           func() time.Time
}

// NewProjector creates a milestone projector.
func NewProjector(projectRepo workflowDomain.ProjectRepository, milestoneRepo domain.MilestoneRepository) *Projector {
	return &Projector{
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the clock. Test hook.
func (p *Projector) WithClock(now func() time.Time) *Projector {
	p.now = now
	return p
}

// RecomputeProject rebuilds every milestone for the project. Planned dates
// come from a topological walk: a stage's planned date is the latest planned
// finish among its dependencies, anchored at the project's planned start.
// Delay is judged against the clock here, on demand; nothing runs on a timer.
func (p *Projector) RecomputeProject(ctx context.Context, projectID uuid.UUID) error {
	project, err := p.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	milestones, err := p.project(project)
	if err != nil {
		return err
	}

	return p.milestoneRepo.ReplaceForProject(ctx, projectID, milestones)
}

func (p *Projector) project(project *workflowDomain.Project) ([]*domain.Milestone, error) {
	ordered, err := workflowDomain.TopologicalOrder(project.Stages())
	if err != nil {
		return nil, err
	}

	now := p.now()
	planned := make(map[uuid.UUID]time.Time, len(ordered))
	milestones := make([]*domain.Milestone, 0, len(ordered))

	for _, stage := range ordered {
		plannedDate := project.PlannedStart()
		for _, depID := range stage.Dependencies() {
			dep, err := project.Stage(depID)
			if err != nil {
				return nil, err
			}
			finish := planned[depID].Add(hoursToDuration(dep.EstimatedDurationHours()))
			if finish.After(plannedDate) {
				plannedDate = finish
			}
		}
		planned[stage.ID()] = plannedDate

		milestones = append(milestones, domain.NewMilestone(
			project.ID(),
			stage.ID(),
			stage.Name(),
			stage.Position(),
			plannedDate,
			stage.EstimatedDurationHours(),
			stage.CompletedAt(),
			deriveStatus(stage, plannedDate, now),
		))
	}

	return milestones, nil
}

// deriveStatus classifies a stage's milestone. Completed and skipped stages
// are done; anything else past its planned date is delayed.
func deriveStatus(stage *workflowDomain.Stage, plannedDate time.Time, now time.Time) domain.DerivedStatus {
	switch stage.Status() {
	case workflowDomain.StatusCompleted, workflowDomain.StatusSkipped:
		return domain.StatusCompleted
	case workflowDomain.StatusDelayed:
		return domain.StatusDelayed
	}
	if now.After(plannedDate) {
		return domain.StatusDelayed
	}
	if stage.Status() == workflowDomain.StatusInProgress {
		return domain.StatusInProgress
	}
	return domain.StatusPending
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
