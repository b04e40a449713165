package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

func TestAdvanceStageHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("starts an eligible stage and recomputes the timeline", func(t *testing.T) {
		project := testProject("Nguyen Wedding")
		plan, err := project.StageByName("Plan")
		require.NoError(t, err)

		projectRepo := new(mockProjectRepo)
		outboxRepo := new(mockOutboxRepo)
		projector := new(mockProjector)

		projectRepo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)
		projectRepo.On("Save", mock.Anything, project).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
		projector.On("RecomputeProject", mock.Anything, project.ID()).Return(nil)

		handler := NewAdvanceStageHandler(projectRepo, outboxRepo, fakeUnitOfWork{}, sharedApplication.NewProjectLocks(), projector, nil)

		result, err := handler.Handle(ctx, AdvanceStageCommand{
			ProjectID:    project.ID(),
			StageID:      plan.ID(),
			TargetStatus: "in_progress",
		})

		require.NoError(t, err)
		assert.Equal(t, "planning", result.ProjectPhase)
		projector.AssertExpectations(t)
	})

	t.Run("surfaces dependency gating from the aggregate", func(t *testing.T) {
		project := testProject("Nguyen Wedding")
		shoot, err := project.StageByName("Shoot")
		require.NoError(t, err)

		projectRepo := new(mockProjectRepo)
		projectRepo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)

		handler := NewAdvanceStageHandler(projectRepo, new(mockOutboxRepo), fakeUnitOfWork{}, sharedApplication.NewProjectLocks(), nil, nil)

		_, err = handler.Handle(ctx, AdvanceStageCommand{
			ProjectID:    project.ID(),
			StageID:      shoot.ID(),
			TargetStatus: "in_progress",
		})

		assert.ErrorIs(t, err, domain.ErrDependencyNotSatisfied)
		projectRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown target status before touching the repo", func(t *testing.T) {
		projectRepo := new(mockProjectRepo)
		handler := NewAdvanceStageHandler(projectRepo, new(mockOutboxRepo), fakeUnitOfWork{}, sharedApplication.NewProjectLocks(), nil, nil)

		project := testProject("Nguyen Wedding")
		plan, _ := project.StageByName("Plan")

		_, err := handler.Handle(ctx, AdvanceStageCommand{
			ProjectID:    project.ID(),
			StageID:      plan.ID(),
			TargetStatus: "paused",
		})

		assert.ErrorIs(t, err, domain.ErrValidation)
		projectRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
