package domain

import "errors"

var (
	// ErrValidation covers malformed ledger input.
	ErrValidation = errors.New("validation error")

	// ErrNotAllocated is returned when an equipment item is not tracked by the ledger.
	ErrNotAllocated = errors.New("equipment not allocated")

	// ErrIllegalAllocationState is returned when an equipment line cannot move
	// to the requested state from its current one.
	ErrIllegalAllocationState = errors.New("illegal allocation state change")

	// ErrStorageExceeded is returned when a consumption would overrun the quota.
	// Hard rejection; delivery downstream depends on the quota holding.
	ErrStorageExceeded = errors.New("storage quota exceeded")

	// ErrLedgerNotFound is returned when a project has no resource ledger.
	ErrLedgerNotFound = errors.New("resource ledger not found")

	// ErrLedgerExists is returned when creating a second ledger for a project.
	ErrLedgerExists = errors.New("resource ledger already exists")
)
