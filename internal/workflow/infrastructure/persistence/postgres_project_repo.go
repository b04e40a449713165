package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// PostgresProjectRepository implements domain.ProjectRepository using PostgreSQL.
type PostgresProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProjectRepository creates a new PostgreSQL project repository.
func NewPostgresProjectRepository(pool *pgxpool.Pool) *PostgresProjectRepository {
	return &PostgresProjectRepository{pool: pool}
}

// Save persists the full aggregate, replacing child rows wholesale.
func (r *PostgresProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	project.IncrementVersion()

	_, err := exec.Exec(ctx, `
		INSERT INTO projects (id, name, priority, phase, current_stage_id, planned_start, archived_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			priority = EXCLUDED.priority,
			phase = EXCLUDED.phase,
			current_stage_id = EXCLUDED.current_stage_id,
			planned_start = EXCLUDED.planned_start,
			archived_at = EXCLUDED.archived_at,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`,
		project.ID(),
		project.Name(),
		project.Priority().String(),
		project.Phase().String(),
		project.CurrentStageID(),
		project.PlannedStart(),
		project.ArchivedAt(),
		project.Version(),
		project.CreatedAt(),
		project.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	_, err = exec.Exec(ctx,
		`DELETE FROM stage_dependencies WHERE stage_id IN (SELECT id FROM stages WHERE project_id = $1)`,
		project.ID())
	if err != nil {
		return fmt.Errorf("clearing stage dependencies: %w", err)
	}
	if _, err := exec.Exec(ctx, `DELETE FROM stages WHERE project_id = $1`, project.ID()); err != nil {
		return fmt.Errorf("clearing stages: %w", err)
	}
	if _, err := exec.Exec(ctx, `DELETE FROM team_members WHERE project_id = $1`, project.ID()); err != nil {
		return fmt.Errorf("clearing team: %w", err)
	}

	for _, stage := range project.Stages() {
		staffIDs := make([]string, 0, len(stage.AssignedStaffIDs()))
		for _, sid := range stage.AssignedStaffIDs() {
			staffIDs = append(staffIDs, sid.String())
		}

		_, err := exec.Exec(ctx, `
			INSERT INTO stages (id, project_id, name, description, phase, status, progress, estimated_duration_hours,
				started_at, completed_at, position, deliverables, assigned_staff_ids, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			stage.ID(),
			project.ID(),
			stage.Name(),
			stage.Description(),
			stage.Phase().String(),
			stage.Status().String(),
			stage.Progress(),
			stage.EstimatedDurationHours(),
			stage.StartedAt(),
			stage.CompletedAt(),
			stage.Position(),
			pq.Array(stage.Deliverables()),
			pq.Array(staffIDs),
			stage.CreatedAt(),
			stage.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("saving stage %q: %w", stage.Name(), err)
		}

		for _, depID := range stage.Dependencies() {
			_, err := exec.Exec(ctx,
				`INSERT INTO stage_dependencies (stage_id, depends_on_stage_id) VALUES ($1, $2)`,
				stage.ID(), depID)
			if err != nil {
				return fmt.Errorf("saving dependency edge: %w", err)
			}
		}
	}

	for _, member := range project.Team() {
		_, err := exec.Exec(ctx,
			`INSERT INTO team_members (project_id, staff_id, role, stage_scope) VALUES ($1, $2, $3, $4)`,
			project.ID(), member.StaffID.String(), member.Role, member.StageScope)
		if err != nil {
			return fmt.Errorf("saving team member: %w", err)
		}
	}

	return nil
}

// FindByID loads the full aggregate.
func (r *PostgresProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	row := exec.QueryRow(ctx, `
		SELECT id, name, priority, phase, current_stage_id, planned_start, archived_at, version, created_at, updated_at
		FROM projects WHERE id = $1`, id)

	head, err := scanPgProjectRow(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
		}
		return nil, err
	}

	return r.hydrate(ctx, exec, head)
}

// List returns projects matching the filter, newest first.
func (r *PostgresProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	query := `
		SELECT id, name, priority, phase, current_stage_id, planned_start, archived_at, version, created_at, updated_at
		FROM projects WHERE 1=1`
	args := []any{}
	argIndex := 1

	if !filter.IncludeArchived {
		query += ` AND archived_at IS NULL`
	}
	if filter.Phase != nil {
		query += fmt.Sprintf(` AND phase = $%d`, argIndex)
		args = append(args, filter.Phase.String())
		argIndex++
	}
	if filter.Priority != nil {
		query += fmt.Sprintf(` AND priority = $%d`, argIndex)
		args = append(args, filter.Priority.String())
		argIndex++
	}
	query += ` ORDER BY created_at DESC`

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var heads []*pgProjectRow
	for rows.Next() {
		head, err := scanPgProjectRow(rows.Scan)
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
		project, err := r.hydrate(ctx, exec, head)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

type pgProjectRow struct {
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

func scanPgProjectRow(scan func(dest ...any) error) (*pgProjectRow, error) {
	head := &pgProjectRow{}
	err := scan(&head.id, &head.name, &head.priority, &head.phase, &head.currentStageID,
		&head.plannedStart, &head.archivedAt, &head.version, &head.createdAt, &head.updatedAt)
	if err != nil {
		return nil, err
	}
	return head, nil
}

func (r *PostgresProjectRepository) hydrate(ctx context.Context, exec sharedPersistence.DBExecutor, head *pgProjectRow) (*domain.Project, error) {
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

func (r *PostgresProjectRepository) loadStages(ctx context.Context, exec sharedPersistence.DBExecutor, projectID uuid.UUID) ([]*domain.Stage, error) {
	deps, err := r.loadDependencies(ctx, exec, projectID)
	if err != nil {
		return nil, err
	}

	rows, err := exec.Query(ctx, `
		SELECT id, name, description, phase, status, progress, estimated_duration_hours,
			started_at, completed_at, position, deliverables, assigned_staff_ids, created_at, updated_at
		FROM stages WHERE project_id = $1 ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.Stage
	for rows.Next() {
		var (
			id                             uuid.UUID
			name, description              string
			phase, status                  string
			progress, position             int
			durationHours                  float64
			startedAt, completedAt         *time.Time
			deliverables, staffStrings     []string
			createdAt, updatedAt           time.Time
		)
		err := rows.Scan(&id, &name, &description, &phase, &status, &progress, &durationHours,
			&startedAt, &completedAt, &position, pq.Array(&deliverables), pq.Array(&staffStrings),
			&createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}

		staffIDs := make([]sharedDomain.StaffID, 0, len(staffStrings))
		for _, s := range staffStrings {
			staffIDs = append(staffIDs, sharedDomain.NewStaffID(s))
		}

		stages = append(stages, domain.RehydrateStage(
			id, projectID, name, description,
			domain.Phase(phase), domain.StageStatus(status), progress, durationHours,
			startedAt, completedAt, position,
			deps[id], deliverables, staffIDs,
			createdAt, updatedAt,
		))
	}
	return stages, rows.Err()
}

func (r *PostgresProjectRepository) loadDependencies(ctx context.Context, exec sharedPersistence.DBExecutor, projectID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := exec.Query(ctx, `
		SELECT sd.stage_id, sd.depends_on_stage_id
		FROM stage_dependencies sd
		JOIN stages s ON s.id = sd.stage_id
		WHERE s.project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var stageID, depID uuid.UUID
		if err := rows.Scan(&stageID, &depID); err != nil {
			return nil, err
		}
		deps[stageID] = append(deps[stageID], depID)
	}
	return deps, rows.Err()
}

func (r *PostgresProjectRepository) loadTeam(ctx context.Context, exec sharedPersistence.DBExecutor, projectID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := exec.Query(ctx, `
		SELECT staff_id, role, stage_scope
		FROM team_members WHERE project_id = $1 ORDER BY staff_id, role`, projectID)
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
