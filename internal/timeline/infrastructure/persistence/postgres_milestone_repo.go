package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
	"github.com/lenslate/darkroom/internal/timeline/domain"
)

// PostgresMilestoneRepository implements domain.MilestoneRepository using PostgreSQL.
type PostgresMilestoneRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMilestoneRepository creates a new PostgreSQL milestone repository.
func NewPostgresMilestoneRepository(pool *pgxpool.Pool) *PostgresMilestoneRepository {
	return &PostgresMilestoneRepository{pool: pool}
}

// ReplaceForProject swaps the project's projection for the given set.
func (r *PostgresMilestoneRepository) ReplaceForProject(ctx context.Context, projectID uuid.UUID, milestones []*domain.Milestone) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	if _, err := exec.Exec(ctx, `DELETE FROM milestones WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("clearing milestones: %w", err)
	}

	for _, m := range milestones {
		_, err := exec.Exec(ctx, `
			INSERT INTO milestones (id, project_id, stage_id, stage_name, position, planned_date,
				duration_hours, completed_date, derived_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			m.ID(), m.ProjectID(), m.StageID(), m.StageName(), m.Position(), m.PlannedDate(),
			m.DurationHours(), m.CompletedDate(), m.DerivedStatus().String(),
			m.CreatedAt(), m.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("saving milestone for stage %q: %w", m.StageName(), err)
		}
	}

	return nil
}

// FindByProjectID loads the project's milestones in pipeline order.
func (r *PostgresMilestoneRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Milestone, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, stage_id, stage_name, position, planned_date, duration_hours,
			completed_date, derived_status, created_at, updated_at
		FROM milestones WHERE project_id = $1 ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		var (
			id, stageID          uuid.UUID
			stageName, status    string
			position             int
			plannedDate          time.Time
			durationHours        float64
			completedDate        *time.Time
			createdAt, updatedAt time.Time
		)
		err := rows.Scan(&id, &stageID, &stageName, &position, &plannedDate, &durationHours,
			&completedDate, &status, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}

		milestones = append(milestones, domain.RehydrateMilestone(
			id, projectID, stageID, stageName, position, plannedDate, durationHours,
			completedDate, domain.DerivedStatus(status), createdAt, updatedAt,
		))
	}
	return milestones, rows.Err()
}

// DeleteByProjectID drops the project's projection.
func (r *PostgresMilestoneRepository) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM milestones WHERE project_id = $1`, projectID)
	return err
}
