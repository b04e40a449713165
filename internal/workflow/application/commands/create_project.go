package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// StageInput describes one stage when creating a project explicitly.
type StageInput struct {
	Name                   string
	Description            string
	Phase                  string
	EstimatedDurationHours float64
	DependsOn              []string
	Deliverables           []string
}

// TeamMemberInput describes one roster entry.
type TeamMemberInput struct {
	StaffID    string
	Role       string
	StageScope string
}

// CreateProjectCommand contains the data needed to create a project.
// Either Template names a pipeline template or Stages lists them explicitly.
type CreateProjectCommand struct {
	Name         string
	Priority     string
	PlannedStart time.Time
	Template     string
	Stages       []StageInput
	Team         []TeamMemberInput
}

// CreateProjectResult contains the result of creating a project.
type CreateProjectResult struct {
	ProjectID uuid.UUID
	Phase     string
}

// TemplateSource resolves pipeline templates by name.
type TemplateSource interface {
	Resolve(name string) (domain.Template, bool)
}

// CreateProjectHandler handles the CreateProjectCommand.
type CreateProjectHandler struct {
	projectRepo domain.ProjectRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	templates   TemplateSource
	projector   TimelineProjector
}

// NewCreateProjectHandler creates a new CreateProjectHandler.
func NewCreateProjectHandler(
	projectRepo domain.ProjectRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	templates TemplateSource,
	projector TimelineProjector,
) *CreateProjectHandler {
	return &CreateProjectHandler{
		projectRepo: projectRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		templates:   templates,
		projector:   projector,
	}
}

// Handle executes the CreateProjectCommand.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*CreateProjectResult, error) {
	specs, err := h.resolveStageSpecs(cmd)
	if err != nil {
		return nil, err
	}

	var result *CreateProjectResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		project, err := domain.NewProject(cmd.Name, domain.Priority(cmd.Priority), cmd.PlannedStart, specs)
		if err != nil {
			return err
		}

		for _, member := range cmd.Team {
			err := project.AddTeamMember(domain.TeamMember{
				StaffID:    sharedDomain.NewStaffID(member.StaffID),
				Role:       member.Role,
				StageScope: member.StageScope,
			})
			if err != nil {
				return err
			}
		}

		if err := h.projectRepo.Save(txCtx, project); err != nil {
			return err
		}

		if err := stageEventsToOutbox(txCtx, h.outboxRepo, project.DomainEvents()); err != nil {
			return err
		}

		result = &CreateProjectResult{ProjectID: project.ID(), Phase: project.Phase().String()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Seed the milestone projection for the new pipeline.
	if h.projector != nil {
		if err := h.projector.RecomputeProject(ctx, result.ProjectID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (h *CreateProjectHandler) resolveStageSpecs(cmd CreateProjectCommand) ([]domain.StageSpec, error) {
	if cmd.Template != "" {
		if h.templates != nil {
			if tpl, ok := h.templates.Resolve(cmd.Template); ok {
				return tpl.Stages, nil
			}
		}
		if tpl, ok := domain.BuiltinTemplate(cmd.Template); ok {
			return tpl.Stages, nil
		}
		return nil, fmt.Errorf("%w: unknown template %q", domain.ErrValidation, cmd.Template)
	}

	specs := make([]domain.StageSpec, 0, len(cmd.Stages))
	for _, input := range cmd.Stages {
		specs = append(specs, domain.StageSpec{
			Name:                   input.Name,
			Description:            input.Description,
			Phase:                  domain.Phase(input.Phase),
			EstimatedDurationHours: input.EstimatedDurationHours,
			DependsOn:              input.DependsOn,
			Deliverables:           input.Deliverables,
		})
	}
	return specs, nil
}
