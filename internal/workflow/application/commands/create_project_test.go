package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/darkroom/internal/workflow/domain"
)

func TestCreateProjectHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates project from explicit stages", func(t *testing.T) {
		projectRepo := new(mockProjectRepo)
		outboxRepo := new(mockOutboxRepo)
		projector := new(mockProjector)

		projectRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Project")).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
		projector.On("RecomputeProject", mock.Anything, mock.Anything).Return(nil)

		handler := NewCreateProjectHandler(projectRepo, outboxRepo, fakeUnitOfWork{}, nil, projector)

		result, err := handler.Handle(ctx, CreateProjectCommand{
			Name:         "Nguyen Wedding",
			Priority:     "high",
			PlannedStart: time.Now().UTC(),
			Stages: []StageInput{
				{Name: "Plan", EstimatedDurationHours: 4},
				{Name: "Shoot", EstimatedDurationHours: 12, DependsOn: []string{"Plan"}},
			},
			Team: []TeamMemberInput{
				{StaffID: "st-001", Role: "lead photographer"},
			},
		})

		require.NoError(t, err)
		assert.NotEqual(t, "", result.ProjectID.String())
		assert.Equal(t, "planning", result.Phase)

		projectRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		projector.AssertCalled(t, "RecomputeProject", mock.Anything, result.ProjectID)
	})

	t.Run("creates project from builtin template", func(t *testing.T) {
		projectRepo := new(mockProjectRepo)
		outboxRepo := new(mockOutboxRepo)

		var saved *domain.Project
		projectRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Project")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Project) }).
			Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewCreateProjectHandler(projectRepo, outboxRepo, fakeUnitOfWork{}, nil, nil)

		_, err := handler.Handle(ctx, CreateProjectCommand{
			Name:     "Ortiz Portraits",
			Template: "portrait",
		})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Len(t, saved.Stages(), 4)
	})

	t.Run("fails on unknown template", func(t *testing.T) {
		handler := NewCreateProjectHandler(new(mockProjectRepo), new(mockOutboxRepo), fakeUnitOfWork{}, nil, nil)

		_, err := handler.Handle(ctx, CreateProjectCommand{Name: "X", Template: "newborn"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("surfaces cyclic pipeline without saving", func(t *testing.T) {
		projectRepo := new(mockProjectRepo)
		handler := NewCreateProjectHandler(projectRepo, new(mockOutboxRepo), fakeUnitOfWork{}, nil, nil)

		_, err := handler.Handle(ctx, CreateProjectCommand{
			Name: "Broken",
			Stages: []StageInput{
				{Name: "A", EstimatedDurationHours: 1, DependsOn: []string{"B"}},
				{Name: "B", EstimatedDurationHours: 1, DependsOn: []string{"A"}},
			},
		})

		assert.ErrorIs(t, err, domain.ErrCyclicDependency)
		projectRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
