package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// sqliteExecutor abstracts *sql.DB and *sql.Tx.
type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteProjectRepository implements domain.ProjectRepository using SQLite.
type SQLiteProjectRepository struct {
	dbConn *sql.DB
}

// NewSQLiteProjectRepository creates a new SQLite project repository.
func NewSQLiteProjectRepository(dbConn *sql.DB) *SQLiteProjectRepository {
	return &SQLiteProjectRepository{dbConn: dbConn}
}

// executor returns the transaction from context when present, otherwise the connection.
func (r *SQLiteProjectRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.dbConn
}

// Save persists the full aggregate: the project row plus its stages,
// dependency edges and roster. Child rows are replaced wholesale, which is
// simple and correct at pipeline sizes.
func (r *SQLiteProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	exec := r.executor(ctx)

	project.IncrementVersion()

	_, err := exec.ExecContext(ctx, `
		INSERT INTO projects (id, name, priority, phase, current_stage_id, planned_start, archived_at, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			priority = excluded.priority,
			phase = excluded.phase,
			current_stage_id = excluded.current_stage_id,
			planned_start = excluded.planned_start,
			archived_at = excluded.archived_at,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		project.ID().String(),
		project.Name(),
		project.Priority().String(),
		project.Phase().String(),
		uuidPtrToNullString(project.CurrentStageID()),
		formatTime(project.PlannedStart()),
		timePtrToNullString(project.ArchivedAt()),
		project.Version(),
		formatTime(project.CreatedAt()),
		formatTime(project.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	for _, table := range []string{"stage_dependencies", "stages", "team_members"} {
		var del string
		if table == "stage_dependencies" {
			del = `DELETE FROM stage_dependencies WHERE stage_id IN (SELECT id FROM stages WHERE project_id = ?)`
		} else {
			del = fmt.Sprintf(`DELETE FROM %s WHERE project_id = ?`, table)
		}
		if _, err := exec.ExecContext(ctx, del, project.ID().String()); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, stage := range project.Stages() {
		deliverables, err := json.Marshal(stage.Deliverables())
		if err != nil {
			return fmt.Errorf("encoding deliverables: %w", err)
		}
		staffIDs := make([]string, 0, len(stage.AssignedStaffIDs()))
		for _, sid := range stage.AssignedStaffIDs() {
			staffIDs = append(staffIDs, sid.String())
		}
		assigned, err := json.Marshal(staffIDs)
		if err != nil {
			return fmt.Errorf("encoding assigned staff: %w", err)
		}

		_, err = exec.ExecContext(ctx, `
			INSERT INTO stages (id, project_id, name, description, phase, status, progress, estimated_duration_hours,
				started_at, completed_at, position, deliverables, assigned_staff_ids, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			stage.ID().String(),
			project.ID().String(),
			stage.Name(),
			stage.Description(),
			stage.Phase().String(),
			stage.Status().String(),
			stage.Progress(),
			stage.EstimatedDurationHours(),
			timePtrToNullString(stage.StartedAt()),
			timePtrToNullString(stage.CompletedAt()),
			stage.Position(),
			string(deliverables),
			string(assigned),
			formatTime(stage.CreatedAt()),
			formatTime(stage.UpdatedAt()),
		)
		if err != nil {
			return fmt.Errorf("saving stage %q: %w", stage.Name(), err)
		}

		for _, depID := range stage.Dependencies() {
			_, err := exec.ExecContext(ctx,
				`INSERT INTO stage_dependencies (stage_id, depends_on_stage_id) VALUES (?, ?)`,
				stage.ID().String(), depID.String())
			if err != nil {
				return fmt.Errorf("saving dependency edge: %w", err)
			}
		}
	}

	for _, member := range project.Team() {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO team_members (project_id, staff_id, role, stage_scope) VALUES (?, ?, ?, ?)`,
			project.ID().String(), member.StaffID.String(), member.Role, member.StageScope)
		if err != nil {
			return fmt.Errorf("saving team member: %w", err)
		}
	}

	return nil
}

// FindByID loads the full aggregate.
func (r *SQLiteProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	exec := r.executor(ctx)

	row := exec.QueryRowContext(ctx, `
		SELECT id, name, priority, phase, current_stage_id, planned_start, archived_at, version, created_at, updated_at
		FROM projects WHERE id = ?`, id.String())

	project, err := r.scanProject(ctx, exec, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
		}
		return nil, err
	}
	return project, nil
}

// List returns projects matching the filter, newest first.
func (r *SQLiteProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	exec := r.executor(ctx)

	query := `
		SELECT id, name, priority, phase, current_stage_id, planned_start, archived_at, version, created_at, updated_at
		FROM projects WHERE 1=1`
	args := []any{}

	if !filter.IncludeArchived {
		query += ` AND archived_at IS NULL`
	}
	if filter.Phase != nil {
		query += ` AND phase = ?`
		args = append(args, filter.Phase.String())
	}
	if filter.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, filter.Priority.String())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var heads []*scannedProject
	for rows.Next() {
		head, err := scanProjectRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	projects := make([]*domain.Project, 0, len(heads))
	for _, head := range heads {
		stages, err := r.loadStages(ctx, exec, head.id)
		if err != nil {
			return nil, err
		}
		team, err := r.loadTeam(ctx, exec, head.id)
		if err != nil {
			return nil, err
		}
		project, err := domain.RehydrateProject(
			head.id, head.name, domain.Priority(head.priority), domain.Phase(head.phase),
			head.currentStageID, head.plannedStart, head.archivedAt,
			stages, team, head.version, head.createdAt, head.updatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

type scannedProject struct {
	id             uuid.UUID
	name           string
	priority       string
	phase          string
	currentStageID *uuid.UUID
	plannedStart   time.Time
	archivedAt     *time.Time
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

func scanProjectRow(scan func(dest ...any) error) (*scannedProject, error) {
	var (
		idStr, name, priority, phase       string
		currentStageID, archivedAt         sql.NullString
		plannedStart, createdAt, updatedAt string
		version                            int
	)
	err := scan(&idStr, &name, &priority, &phase, &currentStageID, &plannedStart, &archivedAt, &version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing project id: %w", err)
	}

	out := &scannedProject{id: id, name: name, priority: priority, phase: phase, version: version}
	if out.plannedStart, err = parseTime(plannedStart); err != nil {
		return nil, err
	}
	if out.createdAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if out.updatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if out.currentStageID, err = nullStringToUUIDPtr(currentStageID); err != nil {
		return nil, err
	}
	if out.archivedAt, err = nullStringToTimePtr(archivedAt); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteProjectRepository) scanProject(ctx context.Context, exec sqliteExecutor, row *sql.Row) (*domain.Project, error) {
	head, err := scanProjectRow(row.Scan)
	if err != nil {
		return nil, err
	}

	stages, err := r.loadStages(ctx, exec, head.id)
	if err != nil {
		return nil, err
	}
	team, err := r.loadTeam(ctx, exec, head.id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateProject(
		head.id, head.name, domain.Priority(head.priority), domain.Phase(head.phase),
		head.currentStageID, head.plannedStart, head.archivedAt,
		stages, team, head.version, head.createdAt, head.updatedAt,
	)
}

func (r *SQLiteProjectRepository) loadStages(ctx context.Context, exec sqliteExecutor, projectID uuid.UUID) ([]*domain.Stage, error) {
	deps, err := r.loadDependencies(ctx, exec, projectID)
	if err != nil {
		return nil, err
	}

	rows, err := exec.QueryContext(ctx, `
		SELECT id, name, description, phase, status, progress, estimated_duration_hours,
			started_at, completed_at, position, deliverables, assigned_staff_ids, created_at, updated_at
		FROM stages WHERE project_id = ? ORDER BY position`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("loading stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.Stage
	for rows.Next() {
		var (
			idStr, name, description, phase, status string
			progress, position                      int
			durationHours                           float64
			startedAt, completedAt                  sql.NullString
			deliverablesJSON, assignedJSON          string
			createdAtStr, updatedAtStr              string
		)
		err := rows.Scan(&idStr, &name, &description, &phase, &status, &progress, &durationHours,
			&startedAt, &completedAt, &position, &deliverablesJSON, &assignedJSON, &createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parsing stage id: %w", err)
		}

		var deliverables []string
		if err := json.Unmarshal([]byte(deliverablesJSON), &deliverables); err != nil {
			return nil, fmt.Errorf("decoding deliverables: %w", err)
		}
		var staffStrings []string
		if err := json.Unmarshal([]byte(assignedJSON), &staffStrings); err != nil {
			return nil, fmt.Errorf("decoding assigned staff: %w", err)
		}
		staffIDs := make([]sharedDomain.StaffID, 0, len(staffStrings))
		for _, s := range staffStrings {
			staffIDs = append(staffIDs, sharedDomain.NewStaffID(s))
		}

		startedAtPtr, err := nullStringToTimePtr(startedAt)
		if err != nil {
			return nil, err
		}
		completedAtPtr, err := nullStringToTimePtr(completedAt)
		if err != nil {
			return nil, err
		}
		createdAt, err := parseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		updatedAt, err := parseTime(updatedAtStr)
		if err != nil {
			return nil, err
		}

		stages = append(stages, domain.RehydrateStage(
			id, projectID, name, description,
			domain.Phase(phase), domain.StageStatus(status), progress, durationHours,
			startedAtPtr, completedAtPtr, position,
			deps[id], deliverables, staffIDs,
			createdAt, updatedAt,
		))
	}
	return stages, rows.Err()
}

func (r *SQLiteProjectRepository) loadDependencies(ctx context.Context, exec sqliteExecutor, projectID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT sd.stage_id, sd.depends_on_stage_id
		FROM stage_dependencies sd
		JOIN stages s ON s.id = sd.stage_id
		WHERE s.project_id = ?`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var stageStr, depStr string
		if err := rows.Scan(&stageStr, &depStr); err != nil {
			return nil, err
		}
		stageID, err := uuid.Parse(stageStr)
		if err != nil {
			return nil, err
		}
		depID, err := uuid.Parse(depStr)
		if err != nil {
			return nil, err
		}
		deps[stageID] = append(deps[stageID], depID)
	}
	return deps, rows.Err()
}

func (r *SQLiteProjectRepository) loadTeam(ctx context.Context, exec sqliteExecutor, projectID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT staff_id, role, stage_scope
		FROM team_members WHERE project_id = ? ORDER BY staff_id, role`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("loading team: %w", err)
	}
	defer rows.Close()

	team := make([]domain.TeamMember, 0)
	for rows.Next() {
		var staffID, role, stageScope string
		if err := rows.Scan(&staffID, &role, &stageScope); err != nil {
			return nil, err
		}
		team = append(team, domain.TeamMember{
			StaffID:    sharedDomain.NewStaffID(staffID),
			Role:       role,
			StageScope: stageScope,
		})
	}
	return team, rows.Err()
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

func uuidPtrToNullString(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullStringToUUIDPtr(ns sql.NullString) (*uuid.UUID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parsing uuid %q: %w", ns.String, err)
	}
	return &id, nil
}
