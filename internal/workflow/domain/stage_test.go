package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStage(t *testing.T, spec StageSpec) *Stage {
	t.Helper()
	stage, err := NewStage(uuid.New(), spec, 0)
	require.NoError(t, err)
	return stage
}

func TestNewStage(t *testing.T) {
	t.Run("creates pending stage with zero progress", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})

		assert.Equal(t, StatusPending, stage.Status())
		assert.Equal(t, 0, stage.Progress())
		assert.Nil(t, stage.StartedAt())
		assert.Nil(t, stage.CompletedAt())
	})

	t.Run("fails on empty name", func(t *testing.T) {
		_, err := NewStage(uuid.New(), StageSpec{Name: "   ", EstimatedDurationHours: 8}, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("fails on non-positive duration", func(t *testing.T) {
		_, err := NewStage(uuid.New(), StageSpec{Name: "Editing", EstimatedDurationHours: 0}, 0)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = NewStage(uuid.New(), StageSpec{Name: "Editing", EstimatedDurationHours: -2}, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("derives phase from name when not given", func(t *testing.T) {
		assert.Equal(t, PhaseEditing, newTestStage(t, StageSpec{Name: "Retouching", EstimatedDurationHours: 4}).Phase())
		assert.Equal(t, PhaseShooting, newTestStage(t, StageSpec{Name: "Studio Session", EstimatedDurationHours: 4}).Phase())
		assert.Equal(t, PhaseDelivery, newTestStage(t, StageSpec{Name: "Gallery Upload", EstimatedDurationHours: 4}).Phase())
	})
}

func TestStageSetProgress(t *testing.T) {
	now := time.Now().UTC()

	t.Run("records progress on active stage", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))

		require.NoError(t, stage.SetProgress(45))
		assert.Equal(t, 45, stage.Progress())
	})

	t.Run("rejects values outside range", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))

		assert.ErrorIs(t, stage.SetProgress(-1), ErrInvalidProgress)
		assert.ErrorIs(t, stage.SetProgress(101), ErrInvalidProgress)
	})

	t.Run("rejects progress on pending stage", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		assert.ErrorIs(t, stage.SetProgress(10), ErrInvalidProgress)
		assert.NoError(t, stage.SetProgress(0))
	})

	t.Run("rejects progress edits on terminal stages", func(t *testing.T) {
		completed := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, completed.TransitionTo(StatusInProgress, now))
		require.NoError(t, completed.TransitionTo(StatusCompleted, now))
		assert.ErrorIs(t, completed.SetProgress(50), ErrInvalidProgress)

		skipped := newTestStage(t, StageSpec{Name: "Proofing", EstimatedDurationHours: 8})
		require.NoError(t, skipped.TransitionTo(StatusSkipped, now))
		assert.ErrorIs(t, skipped.SetProgress(50), ErrInvalidProgress)
	})

	t.Run("reserves 100 for the completed transition", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))
		assert.ErrorIs(t, stage.SetProgress(100), ErrInvalidProgress)
	})
}

func TestStageTransitionTo(t *testing.T) {
	now := time.Now().UTC()

	t.Run("sets startedAt on entering in_progress", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Shoot", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))

		require.NotNil(t, stage.StartedAt())
		assert.Equal(t, now, *stage.StartedAt())
	})

	t.Run("completed stage has progress 100 and completedAt", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Shoot", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))
		require.NoError(t, stage.SetProgress(60))
		require.NoError(t, stage.TransitionTo(StatusCompleted, now))

		assert.Equal(t, 100, stage.Progress())
		require.NotNil(t, stage.CompletedAt())
	})

	t.Run("delayed is re-entrant", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))
		require.NoError(t, stage.TransitionTo(StatusDelayed, now))
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))
		assert.Equal(t, StatusInProgress, stage.Status())
	})

	t.Run("resuming from delayed does not reset startedAt", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))
		started := *stage.StartedAt()

		require.NoError(t, stage.TransitionTo(StatusDelayed, now))
		require.NoError(t, stage.TransitionTo(StatusInProgress, now.Add(time.Hour)))
		assert.Equal(t, started, *stage.StartedAt())
	})

	t.Run("rejects transitions outside the table", func(t *testing.T) {
		cases := []struct {
			from []StageStatus // path to reach the from-state
			to   StageStatus
		}{
			{[]StageStatus{}, StatusCompleted},                                   // pending -> completed
			{[]StageStatus{}, StatusDelayed},                                     // pending -> delayed
			{[]StageStatus{StatusInProgress}, StatusInProgress},                  // already in_progress
			{[]StageStatus{StatusInProgress, StatusDelayed}, StatusSkipped},      // delayed -> skipped
			{[]StageStatus{StatusInProgress, StatusCompleted}, StatusInProgress}, // completed is terminal
			{[]StageStatus{StatusSkipped}, StatusInProgress},                     // skipped is terminal
		}

		for _, tc := range cases {
			stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
			for _, step := range tc.from {
				require.NoError(t, stage.TransitionTo(step, now))
			}
			assert.ErrorIs(t, stage.TransitionTo(tc.to, now), ErrIllegalTransition,
				"%s -> %s should be illegal", stage.Status(), tc.to)
		}
	})

	t.Run("nothing re-enters pending", func(t *testing.T) {
		stage := newTestStage(t, StageSpec{Name: "Editing", EstimatedDurationHours: 8})
		require.NoError(t, stage.TransitionTo(StatusInProgress, now))
		assert.ErrorIs(t, stage.TransitionTo(StatusPending, now), ErrIllegalTransition)
	})
}
