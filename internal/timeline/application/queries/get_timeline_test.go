package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/darkroom/internal/timeline/domain"
)

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

func TestGetTimelineHandler(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	start := time.Date(2026, time.December, 15, 9, 0, 0, 0, time.UTC)

	t.Run("delivery is the latest planned finish", func(t *testing.T) {
		milestones := []*domain.Milestone{
			domain.NewMilestone(projectID, uuid.New(), "Edit", 1, start.Add(12*time.Hour), 40, nil, domain.StatusPending),
			domain.NewMilestone(projectID, uuid.New(), "Shoot", 0, start, 12, nil, domain.StatusInProgress),
		}

		repo := new(mockMilestoneRepo)
		repo.On("FindByProjectID", mock.Anything, projectID).Return(milestones, nil)

		handler := NewGetTimelineHandler(repo)

		view, err := handler.Handle(ctx, GetTimelineQuery{ProjectID: projectID})
		require.NoError(t, err)

		require.Len(t, view.Milestones, 2)
		assert.Equal(t, "Shoot", view.Milestones[0].StageName)
		assert.Equal(t, "Edit", view.Milestones[1].StageName)
		assert.Equal(t, start.Add(12*time.Hour).Add(40*time.Hour), view.EstimatedDelivery)
		assert.False(t, view.Delayed)
	})

	t.Run("any delayed milestone marks the timeline delayed", func(t *testing.T) {
		milestones := []*domain.Milestone{
			domain.NewMilestone(projectID, uuid.New(), "Shoot", 0, start, 12, nil, domain.StatusDelayed),
		}

		repo := new(mockMilestoneRepo)
		repo.On("FindByProjectID", mock.Anything, projectID).Return(milestones, nil)

		handler := NewGetTimelineHandler(repo)

		view, err := handler.Handle(ctx, GetTimelineQuery{ProjectID: projectID})
		require.NoError(t, err)
		assert.True(t, view.Delayed)
	})

	t.Run("empty projection surfaces ErrTimelineNotFound", func(t *testing.T) {
		repo := new(mockMilestoneRepo)
		repo.On("FindByProjectID", mock.Anything, projectID).Return([]*domain.Milestone{}, nil)

		handler := NewGetTimelineHandler(repo)

		_, err := handler.Handle(ctx, GetTimelineQuery{ProjectID: projectID})
		assert.ErrorIs(t, err, domain.ErrTimelineNotFound)
	})

	t.Run("estimated delivery shortcut", func(t *testing.T) {
		milestones := []*domain.Milestone{
			domain.NewMilestone(projectID, uuid.New(), "Shoot", 0, start, 12, nil, domain.StatusPending),
			domain.NewMilestone(projectID, uuid.New(), "Edit", 1, start.Add(12*time.Hour), 40, nil, domain.StatusPending),
		}

		repo := new(mockMilestoneRepo)
		repo.On("FindByProjectID", mock.Anything, projectID).Return(milestones, nil)

		handler := NewGetEstimatedDeliveryHandler(repo)

		delivery, err := handler.Handle(ctx, GetTimelineQuery{ProjectID: projectID})
		require.NoError(t, err)
		assert.Equal(t, start.Add(52*time.Hour), delivery)
	})
}
