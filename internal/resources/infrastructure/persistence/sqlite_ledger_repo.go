// Package persistence provides ledger repositories.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/resources/domain"
	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
)

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteLedgerRepository implements domain.LedgerRepository using SQLite.
type SQLiteLedgerRepository struct {
	dbConn *sql.DB
}

// NewSQLiteLedgerRepository creates a new SQLite ledger repository.
func NewSQLiteLedgerRepository(dbConn *sql.DB) *SQLiteLedgerRepository {
	return &SQLiteLedgerRepository{dbConn: dbConn}
}

func (r *SQLiteLedgerRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.dbConn
}

// Save persists the ledger and its equipment lines.
func (r *SQLiteLedgerRepository) Save(ctx context.Context, ledger *domain.ResourceLedger) error {
	exec := r.executor(ctx)

	ledger.IncrementVersion()

	_, err := exec.ExecContext(ctx, `
		INSERT INTO resource_ledgers (id, project_id, storage_used, storage_total, storage_unit, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			storage_used = excluded.storage_used,
			storage_total = excluded.storage_total,
			storage_unit = excluded.storage_unit,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		ledger.ID().String(),
		ledger.ProjectID().String(),
		ledger.StorageUsed(),
		ledger.StorageTotal(),
		ledger.StorageUnit(),
		ledger.Version(),
		formatTime(ledger.CreatedAt()),
		formatTime(ledger.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM equipment_allocations WHERE ledger_id = ?`, ledger.ID().String()); err != nil {
		return fmt.Errorf("clearing equipment: %w", err)
	}

	for _, a := range ledger.Equipment() {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO equipment_allocations (id, ledger_id, item_ref, quantity, state, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID().String(),
			ledger.ID().String(),
			a.ItemRef(),
			a.Quantity(),
			a.State().String(),
			formatTime(a.CreatedAt()),
			formatTime(a.UpdatedAt()),
		)
		if err != nil {
			return fmt.Errorf("saving equipment %q: %w", a.ItemRef(), err)
		}
	}

	return nil
}

// FindByProjectID loads a project's ledger.
func (r *SQLiteLedgerRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.ResourceLedger, error) {
	exec := r.executor(ctx)

	var (
		idStr                    string
		storageUsed, storageTotal float64
		storageUnit              string
		version                  int
		createdStr, updatedStr   string
	)
	err := exec.QueryRowContext(ctx, `
		SELECT id, storage_used, storage_total, storage_unit, version, created_at, updated_at
		FROM resource_ledgers WHERE project_id = ?`, projectID.String()).
		Scan(&idStr, &storageUsed, &storageTotal, &storageUnit, &version, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s", domain.ErrLedgerNotFound, projectID)
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing ledger id: %w", err)
	}
	createdAt, err := parseTime(createdStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(updatedStr)
	if err != nil {
		return nil, err
	}

	equipment, err := r.loadEquipment(ctx, exec, id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateResourceLedger(
		id, projectID, equipment, storageUsed, storageTotal, storageUnit,
		version, createdAt, updatedAt,
	), nil
}

func (r *SQLiteLedgerRepository) loadEquipment(ctx context.Context, exec sqliteExecutor, ledgerID uuid.UUID) ([]*domain.EquipmentAllocation, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, item_ref, quantity, state, created_at, updated_at
		FROM equipment_allocations WHERE ledger_id = ? ORDER BY created_at, item_ref`, ledgerID.String())
	if err != nil {
		return nil, fmt.Errorf("loading equipment: %w", err)
	}
	defer rows.Close()

	equipment := make([]*domain.EquipmentAllocation, 0)
	for rows.Next() {
		var (
			idStr, itemRef, state  string
			quantity               int
			createdStr, updatedStr string
		)
		if err := rows.Scan(&idStr, &itemRef, &quantity, &state, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}

		id, err := uuid.Parse(idStr)
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

		equipment = append(equipment, domain.RehydrateEquipmentAllocation(
			id, itemRef, quantity, domain.AllocationState(state), createdAt, updatedAt,
		))
	}
	return equipment, rows.Err()
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
