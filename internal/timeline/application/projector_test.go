package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/darkroom/internal/timeline/domain"
	workflowDomain "github.com/lenslate/darkroom/internal/workflow/domain"
)

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, project *workflowDomain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*workflowDomain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflowDomain.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context, filter workflowDomain.ProjectFilter) ([]*workflowDomain.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflowDomain.Project), args.Error(1)
}

type mockMilestoneRepo struct {
	mock.Mock
}

func (m *mockMilestoneRepo) ReplaceForProject(ctx context.Context, projectID uuid.UUID, milestones []*domain.Milestone) error {
	args := m.Called(ctx, projectID, milestones)
	return args.Error(0)
}

func (m *mockMilestoneRepo) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Milestone, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Milestone), args.Error(1)
}

func (m *mockMilestoneRepo) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func TestProjector(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, time.December, 15, 9, 0, 0, 0, time.UTC)

	newProject := func(t *testing.T) *workflowDomain.Project {
		project, err := workflowDomain.NewProject("Nguyen Wedding", workflowDomain.PriorityMedium, start, []workflowDomain.StageSpec{
			{Name: "Shoot", Phase: workflowDomain.PhaseShooting, EstimatedDurationHours: 12},
			{Name: "Edit", Phase: workflowDomain.PhaseEditing, EstimatedDurationHours: 40, DependsOn: []string{"Shoot"}},
		})
		require.NoError(t, err)
		project.ClearDomainEvents()
		return project
	}

	t.Run("planned dates follow the dependency chain", func(t *testing.T) {
		project := newProject(t)

		projectRepo := new(mockProjectRepo)
		projectRepo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)

		var saved []*domain.Milestone
		milestoneRepo := new(mockMilestoneRepo)
		milestoneRepo.On("ReplaceForProject", mock.Anything, project.ID(), mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(2).([]*domain.Milestone) }).
			Return(nil)

		projector := NewProjector(projectRepo, milestoneRepo).
			WithClock(func() time.Time { return start.Add(-time.Hour) })

		require.NoError(t, projector.RecomputeProject(ctx, project.ID()))
		require.Len(t, saved, 2)

		byName := map[string]*domain.Milestone{}
		for _, m := range saved {
			byName[m.StageName()] = m
		}

		shoot := byName["Shoot"]
		edit := byName["Edit"]
		require.NotNil(t, shoot)
		require.NotNil(t, edit)

		assert.Equal(t, start, shoot.PlannedDate())
		assert.Equal(t, start.Add(12*time.Hour), edit.PlannedDate())
		assert.Equal(t, start.Add(12*time.Hour).Add(40*time.Hour), edit.PlannedFinish())
		assert.Equal(t, domain.StatusPending, shoot.DerivedStatus())
	})

	t.Run("flags delay against the clock", func(t *testing.T) {
		project := newProject(t)
		shootStage, err := project.StageByName("Shoot")
		require.NoError(t, err)
		require.NoError(t, project.AdvanceStage(shootStage.ID(), workflowDomain.StatusInProgress))
		project.ClearDomainEvents()

		projectRepo := new(mockProjectRepo)
		projectRepo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)

		var saved []*domain.Milestone
		milestoneRepo := new(mockMilestoneRepo)
		milestoneRepo.On("ReplaceForProject", mock.Anything, project.ID(), mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(2).([]*domain.Milestone) }).
			Return(nil)

		// Well past the Edit stage's planned date; Shoot is running.
		projector := NewProjector(projectRepo, milestoneRepo).
			WithClock(func() time.Time { return start.Add(20 * time.Hour) })

		require.NoError(t, projector.RecomputeProject(ctx, project.ID()))

		byName := map[string]*domain.Milestone{}
		for _, m := range saved {
			byName[m.StageName()] = m
		}
		assert.Equal(t, domain.StatusDelayed, byName["Shoot"].DerivedStatus())
		assert.Equal(t, domain.StatusDelayed, byName["Edit"].DerivedStatus())
	})

	t.Run("completed stages carry their completion date", func(t *testing.T) {
		project := newProject(t)
		shootStage, err := project.StageByName("Shoot")
		require.NoError(t, err)
		require.NoError(t, project.AdvanceStage(shootStage.ID(), workflowDomain.StatusInProgress))
		require.NoError(t, project.AdvanceStage(shootStage.ID(), workflowDomain.StatusCompleted))
		project.ClearDomainEvents()

		projectRepo := new(mockProjectRepo)
		projectRepo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)

		var saved []*domain.Milestone
		milestoneRepo := new(mockMilestoneRepo)
		milestoneRepo.On("ReplaceForProject", mock.Anything, project.ID(), mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(2).([]*domain.Milestone) }).
			Return(nil)

		projector := NewProjector(projectRepo, milestoneRepo).
			WithClock(func() time.Time { return start.Add(-time.Hour) })

		require.NoError(t, projector.RecomputeProject(ctx, project.ID()))

		byName := map[string]*domain.Milestone{}
		for _, m := range saved {
			byName[m.StageName()] = m
		}
		assert.Equal(t, domain.StatusCompleted, byName["Shoot"].DerivedStatus())
		assert.NotNil(t, byName["Shoot"].CompletedDate())
		assert.Nil(t, byName["Edit"].CompletedDate())
	})

	t.Run("propagates project lookup failures", func(t *testing.T) {
		projectRepo := new(mockProjectRepo)
		unknown := uuid.New()
		projectRepo.On("FindByID", mock.Anything, unknown).Return(nil, workflowDomain.ErrProjectNotFound)

		projector := NewProjector(projectRepo, new(mockMilestoneRepo))

		err := projector.RecomputeProject(ctx, unknown)
		assert.ErrorIs(t, err, workflowDomain.ErrProjectNotFound)
	})
}
