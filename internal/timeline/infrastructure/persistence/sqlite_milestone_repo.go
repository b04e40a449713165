// Package persistence provides the SQLite milestone repository.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
	"github.com/lenslate/darkroom/internal/timeline/domain"
)

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteMilestoneRepository implements domain.MilestoneRepository using SQLite.
type SQLiteMilestoneRepository struct {
	dbConn *sql.DB
}

// NewSQLiteMilestoneRepository creates a new SQLite milestone repository.
func NewSQLiteMilestoneRepository(dbConn *sql.DB) *SQLiteMilestoneRepository {
	return &SQLiteMilestoneRepository{dbConn: dbConn}
}

func (r *SQLiteMilestoneRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.dbConn
}

// ReplaceForProject swaps the project's projection for the given set.
func (r *SQLiteMilestoneRepository) ReplaceForProject(ctx context.Context, projectID uuid.UUID, milestones []*domain.Milestone) error {
	exec := r.executor(ctx)

	if _, err := exec.ExecContext(ctx, `DELETE FROM milestones WHERE project_id = ?`, projectID.String()); err != nil {
		return fmt.Errorf("clearing milestones: %w", err)
	}

	for _, m := range milestones {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO milestones (id, project_id, stage_id, stage_name, position, planned_date,
				duration_hours, completed_date, derived_status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID().String(),
			m.ProjectID().String(),
			m.StageID().String(),
			m.StageName(),
			m.Position(),
			formatTime(m.PlannedDate()),
			m.DurationHours(),
			timePtrToNullString(m.CompletedDate()),
			m.DerivedStatus().String(),
			formatTime(m.CreatedAt()),
			formatTime(m.UpdatedAt()),
		)
		if err != nil {
			return fmt.Errorf("saving milestone for stage %q: %w", m.StageName(), err)
		}
	}

	return nil
}

// FindByProjectID loads the project's milestones in pipeline order.
func (r *SQLiteMilestoneRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Milestone, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, `
		SELECT id, stage_id, stage_name, position, planned_date, duration_hours,
			completed_date, derived_status, created_at, updated_at
		FROM milestones WHERE project_id = ? ORDER BY position`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("loading milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		var (
			idStr, stageIDStr, stageName, status string
			position                             int
			plannedStr, createdStr, updatedStr   string
			durationHours                        float64
			completed                            sql.NullString
		)
		err := rows.Scan(&idStr, &stageIDStr, &stageName, &position, &plannedStr, &durationHours,
			&completed, &status, &createdStr, &updatedStr)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		stageID, err := uuid.Parse(stageIDStr)
		if err != nil {
			return nil, err
		}
		plannedDate, err := parseTime(plannedStr)
		if err != nil {
			return nil, err
		}
		createdAt, err := parseTime(createdStr)
		if err != nil {
			return nil, err
		}
		updatedAt, err := parseTime(updatedStr)
		if err != nil {
			return nil, err
		}
		completedDate, err := nullStringToTimePtr(completed)
		if err != nil {
			return nil, err
		}

		milestones = append(milestones, domain.RehydrateMilestone(
			id, projectID, stageID, stageName, position, plannedDate, durationHours,
			completedDate, domain.DerivedStatus(status), createdAt, updatedAt,
		))
	}
	return milestones, rows.Err()
}

// DeleteByProjectID drops the project's projection.
func (r *SQLiteMilestoneRepository) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.executor(ctx).ExecContext(ctx, `DELETE FROM milestones WHERE project_id = ?`, projectID.String())
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func timePtrToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullStringToTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
