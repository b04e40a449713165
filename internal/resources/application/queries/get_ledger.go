// Package queries contains the read side of the resources context.
package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/resources/domain"
)

// EquipmentView is one equipment line in a ledger view.
type EquipmentView struct {
	ItemRef  string `json:"item_ref"`
	Quantity int    `json:"quantity"`
	State    string `json:"state"`
}

// LedgerView is the read-only view of a project's resources.
type LedgerView struct {
	LedgerID         uuid.UUID       `json:"ledger_id"`
	ProjectID        uuid.UUID       `json:"project_id"`
	Equipment        []EquipmentView `json:"equipment"`
	StorageUsed      float64         `json:"storage_used"`
	StorageTotal     float64         `json:"storage_total"`
	StorageRemaining float64         `json:"storage_remaining"`
	StorageUnit      string          `json:"storage_unit"`
}

// GetLedgerQuery requests one project's resource ledger.
type GetLedgerQuery struct {
	ProjectID uuid.UUID
}

// GetLedgerHandler handles the GetLedgerQuery.
type GetLedgerHandler struct {
	ledgerRepo domain.LedgerRepository
}

// NewGetLedgerHandler creates a new GetLedgerHandler.
func NewGetLedgerHandler(ledgerRepo domain.LedgerRepository) *GetLedgerHandler {
	return &GetLedgerHandler{ledgerRepo: ledgerRepo}
}

// Handle executes the GetLedgerQuery.
func (h *GetLedgerHandler) Handle(ctx context.Context, query GetLedgerQuery) (*LedgerView, error) {
	ledger, err := h.ledgerRepo.FindByProjectID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}

	equipment := make([]EquipmentView, 0, len(ledger.Equipment()))
	for _, a := range ledger.Equipment() {
		equipment = append(equipment, EquipmentView{
			ItemRef:  a.ItemRef(),
			Quantity: a.Quantity(),
			State:    a.State().String(),
		})
	}

	return &LedgerView{
		LedgerID:         ledger.ID(),
		ProjectID:        ledger.ProjectID(),
		Equipment:        equipment,
		StorageUsed:      ledger.StorageUsed(),
		StorageTotal:     ledger.StorageTotal(),
		StorageRemaining: ledger.StorageRemaining(),
		StorageUnit:      ledger.StorageUnit(),
	}, nil
}
