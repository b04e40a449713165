package domain

import (
	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
)

const aggregateType = "ResourceLedger"

// LedgerCreated is emitted when a project gets its resource ledger.
type LedgerCreated struct {
	sharedDomain.BaseEvent
	LedgerID     uuid.UUID `json:"ledger_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	StorageTotal float64   `json:"storage_total"`
	StorageUnit  string    `json:"storage_unit"`
}

// NewLedgerCreated creates a LedgerCreated event.
func NewLedgerCreated(l *ResourceLedger) *LedgerCreated {
	return &LedgerCreated{
		BaseEvent:    sharedDomain.NewBaseEvent(l.ID(), aggregateType, "resources.ledger.created"),
		LedgerID:     l.ID(),
		ProjectID:    l.ProjectID(),
		StorageTotal: l.StorageTotal(),
		StorageUnit:  l.StorageUnit(),
	}
}

// EquipmentAllocated is emitted when equipment is added to the ledger.
type EquipmentAllocated struct {
	sharedDomain.BaseEvent
	LedgerID  uuid.UUID `json:"ledger_id"`
	ProjectID uuid.UUID `json:"project_id"`
	ItemRef   string    `json:"item_ref"`
	Quantity  int       `json:"quantity"`
}

// NewEquipmentAllocated creates an EquipmentAllocated event.
func NewEquipmentAllocated(l *ResourceLedger, itemRef string, quantity int) *EquipmentAllocated {
	return &EquipmentAllocated{
		BaseEvent: sharedDomain.NewBaseEvent(l.ID(), aggregateType, "resources.equipment.allocated"),
		LedgerID:  l.ID(),
		ProjectID: l.ProjectID(),
		ItemRef:   itemRef,
		Quantity:  quantity,
	}
}

// EquipmentStateChanged is emitted when an item moves between states.
type EquipmentStateChanged struct {
	sharedDomain.BaseEvent
	LedgerID  uuid.UUID `json:"ledger_id"`
	ProjectID uuid.UUID `json:"project_id"`
	ItemRef   string    `json:"item_ref"`
	State     string    `json:"state"`
}

// NewEquipmentStateChanged creates an EquipmentStateChanged event.
func NewEquipmentStateChanged(l *ResourceLedger, itemRef string, state AllocationState) *EquipmentStateChanged {
	return &EquipmentStateChanged{
		BaseEvent: sharedDomain.NewBaseEvent(l.ID(), aggregateType, "resources.equipment.state_changed"),
		LedgerID:  l.ID(),
		ProjectID: l.ProjectID(),
		ItemRef:   itemRef,
		State:     state.String(),
	}
}

// StorageConsumed is emitted when quota is drawn down.
type StorageConsumed struct {
	sharedDomain.BaseEvent
	LedgerID  uuid.UUID `json:"ledger_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Units     float64   `json:"units"`
	Used      float64   `json:"used"`
	Total     float64   `json:"total"`
}

// NewStorageConsumed creates a StorageConsumed event.
func NewStorageConsumed(l *ResourceLedger, units float64) *StorageConsumed {
	return &StorageConsumed{
		BaseEvent: sharedDomain.NewBaseEvent(l.ID(), aggregateType, "resources.storage.consumed"),
		LedgerID:  l.ID(),
		ProjectID: l.ProjectID(),
		Units:     units,
		Used:      l.StorageUsed(),
		Total:     l.StorageTotal(),
	}
}
