// Package domain holds the resource ledger: per-project equipment allocations
// and the storage quota. The studio's total inventory lives elsewhere; the
// ledger only tracks what this project holds.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
)

// AllocationState tracks one equipment line through its lifecycle.
type AllocationState string

const (
	StateAllocated AllocationState = "allocated"
	StateInUse     AllocationState = "in_use"
	StateReturned  AllocationState = "returned"
)

func (s AllocationState) String() string { return string(s) }

// allocationTransitions is the legal state order. Returned gear only comes
// back through AllocateEquipment, which resets the line to allocated.
var allocationTransitions = map[AllocationState][]AllocationState{
	StateAllocated: {StateInUse, StateReturned},
	StateInUse:     {StateReturned},
	StateReturned:  {},
}

// CanTransitionTo checks the allocation state machine.
func (s AllocationState) CanTransitionTo(target AllocationState) bool {
	for _, allowed := range allocationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// EquipmentAllocation is one equipment line in the ledger.
type EquipmentAllocation struct {
	sharedDomain.BaseEntity
	itemRef  string
	quantity int
	state    AllocationState
}

func (a *EquipmentAllocation) ItemRef() string        { return a.itemRef }
func (a *EquipmentAllocation) Quantity() int          { return a.quantity }
func (a *EquipmentAllocation) State() AllocationState { return a.state }

// RehydrateEquipmentAllocation recreates an allocation from persisted state.
func RehydrateEquipmentAllocation(
	id uuid.UUID,
	itemRef string,
	quantity int,
	state AllocationState,
	createdAt time.Time,
	updatedAt time.Time,
) *EquipmentAllocation {
	return &EquipmentAllocation{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		itemRef:    itemRef,
		quantity:   quantity,
		state:      state,
	}
}

// DefaultStorageTotal is the quota a new ledger starts with, in StorageUnit.
const DefaultStorageTotal = 500.0

// StorageUnit labels the quota figures.
const StorageUnit = "GB"

// ResourceLedger is the aggregate root for one project's resources.
type ResourceLedger struct {
	sharedDomain.BaseAggregateRoot
	projectID    uuid.UUID
	equipment    []*EquipmentAllocation
	storageUsed  float64
	storageTotal float64
	storageUnit  string
}

// NewResourceLedger creates an empty ledger for a project.
func NewResourceLedger(projectID uuid.UUID, storageTotal float64) (*ResourceLedger, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project id is required", ErrValidation)
	}
	if storageTotal <= 0 {
		storageTotal = DefaultStorageTotal
	}

	ledger := &ResourceLedger{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		projectID:         projectID,
		equipment:         make([]*EquipmentAllocation, 0),
		storageTotal:      storageTotal,
		storageUnit:       StorageUnit,
	}
	ledger.AddDomainEvent(NewLedgerCreated(ledger))
	return ledger, nil
}

func (l *ResourceLedger) ProjectID() uuid.UUID  { return l.projectID }
func (l *ResourceLedger) StorageUsed() float64  { return l.storageUsed }
func (l *ResourceLedger) StorageTotal() float64 { return l.storageTotal }
func (l *ResourceLedger) StorageUnit() string   { return l.storageUnit }

// Equipment returns the ledger's equipment lines.
func (l *ResourceLedger) Equipment() []*EquipmentAllocation {
	return append([]*EquipmentAllocation(nil), l.equipment...)
}

// StorageRemaining is how much quota is left.
func (l *ResourceLedger) StorageRemaining() float64 {
	return l.storageTotal - l.storageUsed
}

func (l *ResourceLedger) find(itemRef string) *EquipmentAllocation {
	for _, a := range l.equipment {
		if a.itemRef == itemRef {
			return a
		}
	}
	return nil
}

// AllocateEquipment appends an equipment line in state allocated. Allocating
// an itemRef already present tops up its quantity and resets it to allocated.
func (l *ResourceLedger) AllocateEquipment(itemRef string, quantity int) error {
	itemRef = strings.TrimSpace(itemRef)
	if itemRef == "" {
		return fmt.Errorf("%w: item ref cannot be empty", ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, quantity)
	}

	if existing := l.find(itemRef); existing != nil {
		existing.quantity += quantity
		existing.state = StateAllocated
		existing.Touch()
	} else {
		l.equipment = append(l.equipment, &EquipmentAllocation{
			BaseEntity: sharedDomain.NewBaseEntity(),
			itemRef:    itemRef,
			quantity:   quantity,
			state:      StateAllocated,
		})
	}

	l.Touch()
	l.AddDomainEvent(NewEquipmentAllocated(l, itemRef, quantity))
	return nil
}

// MarkInUse moves an allocated item into use.
func (l *ResourceLedger) MarkInUse(itemRef string) error {
	return l.setState(itemRef, StateInUse)
}

// MarkReturned returns an item.
func (l *ResourceLedger) MarkReturned(itemRef string) error {
	return l.setState(itemRef, StateReturned)
}

func (l *ResourceLedger) setState(itemRef string, state AllocationState) error {
	allocation := l.find(itemRef)
	if allocation == nil {
		return fmt.Errorf("%w: %q", ErrNotAllocated, itemRef)
	}
	if !allocation.state.CanTransitionTo(state) {
		return fmt.Errorf("%w: %q cannot move from %s to %s",
			ErrIllegalAllocationState, itemRef, allocation.state, state)
	}

	allocation.state = state
	allocation.Touch()
	l.Touch()
	l.AddDomainEvent(NewEquipmentStateChanged(l, itemRef, state))
	return nil
}

// ConsumeStorage draws units from the quota. Overruns are rejected outright,
// never clamped; the used figure is unchanged on failure.
func (l *ResourceLedger) ConsumeStorage(units float64) error {
	if units <= 0 {
		return fmt.Errorf("%w: units must be positive, got %v", ErrValidation, units)
	}
	if l.storageUsed+units > l.storageTotal {
		return fmt.Errorf("%w: %v + %v exceeds %v %s",
			ErrStorageExceeded, l.storageUsed, units, l.storageTotal, l.storageUnit)
	}

	l.storageUsed += units
	l.Touch()
	l.AddDomainEvent(NewStorageConsumed(l, units))
	return nil
}

// RehydrateResourceLedger recreates a ledger from persisted state.
func RehydrateResourceLedger(
	id uuid.UUID,
	projectID uuid.UUID,
	equipment []*EquipmentAllocation,
	storageUsed float64,
	storageTotal float64,
	storageUnit string,
	version int,
	createdAt time.Time,
	updatedAt time.Time,
) *ResourceLedger {
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &ResourceLedger{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(baseEntity, version),
		projectID:         projectID,
		equipment:         equipment,
		storageUsed:       storageUsed,
		storageTotal:      storageTotal,
		storageUnit:       storageUnit,
	}
}
