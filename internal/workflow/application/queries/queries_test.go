package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/darkroom/internal/workflow/domain"
)

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

// fakeSnapshotCache is an in-memory stand-in for the Redis cache.
type fakeSnapshotCache struct {
	entries map[uuid.UUID]*domain.ProjectSnapshot
	getErr  error
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{entries: make(map[uuid.UUID]*domain.ProjectSnapshot)}
}

func (c *fakeSnapshotCache) Get(_ context.Context, projectID uuid.UUID) (*domain.ProjectSnapshot, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[projectID], nil
}

func (c *fakeSnapshotCache) Set(_ context.Context, snapshot *domain.ProjectSnapshot) error {
	c.entries[snapshot.ID] = snapshot
	return nil
}

func (c *fakeSnapshotCache) Invalidate(_ context.Context, projectID uuid.UUID) error {
	delete(c.entries, projectID)
	return nil
}

func newPipelineProject(t *testing.T, name string) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(name, domain.PriorityMedium, time.Now().UTC(), []domain.StageSpec{
		{Name: "Plan", Phase: domain.PhasePlanning, EstimatedDurationHours: 4},
		{Name: "Shoot", Phase: domain.PhaseShooting, EstimatedDurationHours: 12, DependsOn: []string{"Plan"}},
	})
	require.NoError(t, err)
	project.ClearDomainEvents()
	return project
}

func TestGetProjectSnapshotHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("loads from repository and fills cache on miss", func(t *testing.T) {
		project := newPipelineProject(t, "Nguyen Wedding")
		repo := new(mockProjectRepo)
		repo.On("FindByID", mock.Anything, project.ID()).Return(project, nil).Once()
		cache := newFakeSnapshotCache()

		handler := NewGetProjectSnapshotHandler(repo, cache)

		snapshot, err := handler.Handle(ctx, GetProjectSnapshotQuery{ProjectID: project.ID()})
		require.NoError(t, err)
		assert.Equal(t, project.ID(), snapshot.ID)
		assert.Len(t, snapshot.Stages, 2)
		assert.NotNil(t, cache.entries[project.ID()])

		// Second read is served from the cache; the repo expectation is Once.
		again, err := handler.Handle(ctx, GetProjectSnapshotQuery{ProjectID: project.ID()})
		require.NoError(t, err)
		assert.Equal(t, snapshot.ID, again.ID)
		repo.AssertExpectations(t)
	})

	t.Run("cache failure degrades to the repository", func(t *testing.T) {
		project := newPipelineProject(t, "Ortiz Portraits")
		repo := new(mockProjectRepo)
		repo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)
		cache := newFakeSnapshotCache()
		cache.getErr = errors.New("connection refused")

		handler := NewGetProjectSnapshotHandler(repo, cache)

		snapshot, err := handler.Handle(ctx, GetProjectSnapshotQuery{ProjectID: project.ID()})
		require.NoError(t, err)
		assert.Equal(t, project.Name(), snapshot.Name)
	})

	t.Run("works without a cache", func(t *testing.T) {
		project := newPipelineProject(t, "Mill Co Campaign")
		repo := new(mockProjectRepo)
		repo.On("FindByID", mock.Anything, project.ID()).Return(project, nil)

		handler := NewGetProjectSnapshotHandler(repo, nil)

		snapshot, err := handler.Handle(ctx, GetProjectSnapshotQuery{ProjectID: project.ID()})
		require.NoError(t, err)
		assert.Equal(t, project.ID(), snapshot.ID)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(mockProjectRepo)
		unknown := uuid.New()
		repo.On("FindByID", mock.Anything, unknown).Return(nil, domain.ErrProjectNotFound)

		handler := NewGetProjectSnapshotHandler(repo, nil)

		_, err := handler.Handle(ctx, GetProjectSnapshotQuery{ProjectID: unknown})
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}

func TestListProjectsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("summarizes projects and forwards filters", func(t *testing.T) {
		first := newPipelineProject(t, "Nguyen Wedding")
		second := newPipelineProject(t, "Ortiz Portraits")

		plan, err := first.StageByName("Plan")
		require.NoError(t, err)
		require.NoError(t, first.AdvanceStage(plan.ID(), domain.StatusInProgress))
		require.NoError(t, first.AdvanceStage(plan.ID(), domain.StatusCompleted))

		repo := new(mockProjectRepo)
		repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.ProjectFilter) bool {
			return f.Phase != nil && *f.Phase == domain.PhaseShooting && f.Priority == nil
		})).Return([]*domain.Project{first, second}, nil)

		handler := NewListProjectsHandler(repo)

		summaries, err := handler.Handle(ctx, ListProjectsQuery{Phase: "shooting"})
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "Nguyen Wedding", summaries[0].Name)
		assert.Equal(t, 2, summaries[0].StageCount)
		assert.Equal(t, 1, summaries[0].DoneStages)
		assert.Equal(t, 0, summaries[1].DoneStages)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		repo := new(mockProjectRepo)
		repo.On("List", mock.Anything, mock.Anything).Return([]*domain.Project{}, nil)

		handler := NewListProjectsHandler(repo)

		summaries, err := handler.Handle(ctx, ListProjectsQuery{})
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}
