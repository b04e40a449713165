package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lenslate/darkroom/internal/resources/domain"
	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
)

// PostgresLedgerRepository implements domain.LedgerRepository using PostgreSQL.
type PostgresLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLedgerRepository creates a new PostgreSQL ledger repository.
func NewPostgresLedgerRepository(pool *pgxpool.Pool) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{pool: pool}
}

// Save persists the ledger and its equipment lines.
func (r *PostgresLedgerRepository) Save(ctx context.Context, ledger *domain.ResourceLedger) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	ledger.IncrementVersion()

	_, err := exec.Exec(ctx, `
		INSERT INTO resource_ledgers (id, project_id, storage_used, storage_total, storage_unit, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			storage_used = EXCLUDED.storage_used,
			storage_total = EXCLUDED.storage_total,
			storage_unit = EXCLUDED.storage_unit,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`,
		ledger.ID(),
		ledger.ProjectID(),
		ledger.StorageUsed(),
		ledger.StorageTotal(),
		ledger.StorageUnit(),
		ledger.Version(),
		ledger.CreatedAt(),
		ledger.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM equipment_allocations WHERE ledger_id = $1`, ledger.ID()); err != nil {
		return fmt.Errorf("clearing equipment: %w", err)
	}

	for _, a := range ledger.Equipment() {
		_, err := exec.Exec(ctx, `
			INSERT INTO equipment_allocations (id, ledger_id, item_ref, quantity, state, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID(), ledger.ID(), a.ItemRef(), a.Quantity(), a.State().String(),
			a.CreatedAt(), a.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("saving equipment %q: %w", a.ItemRef(), err)
		}
	}

	return nil
}

// FindByProjectID loads a project's ledger.
func (r *PostgresLedgerRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.ResourceLedger, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var (
		id                        uuid.UUID
		storageUsed, storageTotal float64
		storageUnit               string
		version                   int
		createdAt, updatedAt      time.Time
	)
	err := exec.QueryRow(ctx, `
		SELECT id, storage_used, storage_total, storage_unit, version, created_at, updated_at
		FROM resource_ledgers WHERE project_id = $1`, projectID).
		Scan(&id, &storageUsed, &storageTotal, &storageUnit, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s", domain.ErrLedgerNotFound, projectID)
		}
		return nil, err
	}

	rows, err := exec.Query(ctx, `
		SELECT id, item_ref, quantity, state, created_at, updated_at
		FROM equipment_allocations WHERE ledger_id = $1 ORDER BY created_at, item_ref`, id)
	if err != nil {
		return nil, fmt.Errorf("loading equipment: %w", err)
	}
	defer rows.Close()

	equipment := make([]*domain.EquipmentAllocation, 0)
	for rows.Next() {
		var (
			allocID              uuid.UUID
			itemRef, state       string
			quantity             int
			allocCreated, allocUpdated time.Time
		)
		if err := rows.Scan(&allocID, &itemRef, &quantity, &state, &allocCreated, &allocUpdated); err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		equipment = append(equipment, domain.RehydrateEquipmentAllocation(
			allocID, itemRef, quantity, domain.AllocationState(state), allocCreated, allocUpdated,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.RehydrateResourceLedger(
		id, projectID, equipment, storageUsed, storageTotal, storageUnit,
		version, createdAt, updatedAt,
	), nil
}
