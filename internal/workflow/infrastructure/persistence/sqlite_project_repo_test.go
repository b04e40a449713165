package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/migrations"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func weddingProject(t *testing.T) *domain.Project {
	t.Helper()
	project, err := domain.NewProject("Nguyen Wedding", domain.PriorityHigh, time.Now().UTC(), []domain.StageSpec{
		{Name: "Plan", Phase: domain.PhasePlanning, EstimatedDurationHours: 4, Deliverables: []string{"shot list"}},
		{Name: "Shoot", Phase: domain.PhaseShooting, EstimatedDurationHours: 12, DependsOn: []string{"Plan"}},
		{Name: "Edit", Phase: domain.PhaseEditing, EstimatedDurationHours: 40, DependsOn: []string{"Shoot"}},
	})
	require.NoError(t, err)
	project.ClearDomainEvents()
	return project
}

func TestSQLiteProjectRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips the full aggregate", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteProjectRepository(db)

		project := weddingProject(t)
		require.NoError(t, project.AddTeamMember(domain.TeamMember{
			StaffID: sharedDomain.NewStaffID("st-001"),
			Role:    "lead photographer",
		}))
		plan, err := project.StageByName("Plan")
		require.NoError(t, err)
		require.NoError(t, project.AssignStaffToStage(plan.ID(), sharedDomain.NewStaffID("st-001")))

		require.NoError(t, repo.Save(ctx, project))

		loaded, err := repo.FindByID(ctx, project.ID())
		require.NoError(t, err)

		assert.Equal(t, project.Name(), loaded.Name())
		assert.Equal(t, domain.PriorityHigh, loaded.Priority())
		assert.Equal(t, domain.PhasePlanning, loaded.Phase())
		assert.Equal(t, project.Version(), loaded.Version())
		require.Len(t, loaded.Stages(), 3)

		loadedPlan, err := loaded.StageByName("Plan")
		require.NoError(t, err)
		assert.Equal(t, []string{"shot list"}, loadedPlan.Deliverables())
		assert.Len(t, loadedPlan.AssignedStaffIDs(), 1)

		loadedShoot, err := loaded.StageByName("Shoot")
		require.NoError(t, err)
		assert.True(t, loadedShoot.DependsOn(loadedPlan.ID()))

		require.Len(t, loaded.Team(), 1)
		assert.Equal(t, "lead photographer", loaded.Team()[0].Role)

		require.NotNil(t, loaded.CurrentStageID())
		assert.Equal(t, plan.ID(), *loaded.CurrentStageID())
	})

	t.Run("persists transitions and timestamps", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteProjectRepository(db)

		project := weddingProject(t)
		plan, _ := project.StageByName("Plan")
		require.NoError(t, project.AdvanceStage(plan.ID(), domain.StatusInProgress))
		require.NoError(t, project.AdvanceStage(plan.ID(), domain.StatusCompleted))
		project.ClearDomainEvents()

		require.NoError(t, repo.Save(ctx, project))

		loaded, err := repo.FindByID(ctx, project.ID())
		require.NoError(t, err)

		loadedPlan, err := loaded.StageByName("Plan")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, loadedPlan.Status())
		assert.Equal(t, 100, loadedPlan.Progress())
		require.NotNil(t, loadedPlan.StartedAt())
		require.NotNil(t, loadedPlan.CompletedAt())

		// The shoot stage became eligible, so the phase follows it.
		assert.Equal(t, domain.PhaseShooting, loaded.Phase())
	})

	t.Run("save is an upsert and bumps the version", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteProjectRepository(db)

		project := weddingProject(t)
		require.NoError(t, repo.Save(ctx, project))
		firstVersion := project.Version()

		plan, _ := project.StageByName("Plan")
		require.NoError(t, project.AdvanceStage(plan.ID(), domain.StatusInProgress))
		project.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, project))

		loaded, err := repo.FindByID(ctx, project.ID())
		require.NoError(t, err)
		assert.Equal(t, firstVersion+1, loaded.Version())

		loadedPlan, err := loaded.StageByName("Plan")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, loadedPlan.Status())
	})

	t.Run("missing project surfaces ErrProjectNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteProjectRepository(db)

		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("list honors archive and phase filters", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSQLiteProjectRepository(db)

		active := weddingProject(t)
		require.NoError(t, repo.Save(ctx, active))

		archived := weddingProject(t)
		require.NoError(t, archived.Archive())
		archived.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, archived))

		projects, err := repo.List(ctx, domain.ProjectFilter{})
		require.NoError(t, err)
		assert.Len(t, projects, 1)

		projects, err = repo.List(ctx, domain.ProjectFilter{IncludeArchived: true})
		require.NoError(t, err)
		assert.Len(t, projects, 2)

		editing := domain.PhaseEditing
		projects, err = repo.List(ctx, domain.ProjectFilter{Phase: &editing})
		require.NoError(t, err)
		assert.Empty(t, projects)
	})
}
