// Package subscribers wires the resources context to workflow events.
package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/lenslate/darkroom/internal/resources/application/commands"
	"github.com/lenslate/darkroom/internal/resources/domain"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/eventbus"
)

// LedgerSubscriber provisions a resource ledger for every new project.
type LedgerSubscriber struct {
	createLedger *commands.CreateLedgerHandler
	storageTotal float64
	logger       *slog.Logger
}

// NewLedgerSubscriber creates a new ledger subscriber. storageTotal zero
// means the domain default quota.
func NewLedgerSubscriber(createLedger *commands.CreateLedgerHandler, storageTotal float64, logger *slog.Logger) *LedgerSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerSubscriber{
		createLedger: createLedger,
		storageTotal: storageTotal,
		logger:       logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *LedgerSubscriber) EventTypes() []string {
	return []string{"workflow.project.created"}
}

// Handle processes an event. Redelivery is expected from the broker, so an
// already existing ledger is not an error.
func (s *LedgerSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if event.RoutingKey != "workflow.project.created" {
		s.logger.Warn("unknown event type", "routing_key", event.RoutingKey)
		return nil
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.logger.Debug("failed to unmarshal project payload",
			"project_id", event.AggregateID,
			"error", err,
		)
	}

	_, err := s.createLedger.Handle(ctx, commands.CreateLedgerCommand{
		ProjectID:    event.AggregateID,
		StorageTotal: s.storageTotal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrLedgerExists) {
			s.logger.Debug("ledger already exists", "project_id", event.AggregateID)
			return nil
		}
		s.logger.Error("failed to create ledger",
			"project_id", event.AggregateID,
			"error", err,
		)
		return err
	}

	s.logger.Info("created resource ledger",
		"project_id", event.AggregateID,
		"project_name", payload.Name,
	)
	return nil
}
