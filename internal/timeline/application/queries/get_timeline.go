// Package queries contains the read side of the timeline context.
package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lenslate/darkroom/internal/timeline/domain"
)

// MilestoneView is one row of a project timeline.
type MilestoneView struct {
	StageID       uuid.UUID  `json:"stage_id"`
	StageName     string     `json:"stage_name"`
	PlannedDate   time.Time  `json:"planned_date"`
	PlannedFinish time.Time  `json:"planned_finish"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	DerivedStatus string     `json:"derived_status"`
}

// TimelineView is the full projected schedule of one project.
type TimelineView struct {
	ProjectID         uuid.UUID       `json:"project_id"`
	Milestones        []MilestoneView `json:"milestones"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	Delayed           bool            `json:"delayed"`
}

// GetTimelineQuery requests the timeline of one project.
type GetTimelineQuery struct {
	ProjectID uuid.UUID
}

// GetTimelineHandler handles the GetTimelineQuery.
type GetTimelineHandler struct {
	milestoneRepo domain.MilestoneRepository
}

// NewGetTimelineHandler creates a new GetTimelineHandler.
func NewGetTimelineHandler(milestoneRepo domain.MilestoneRepository) *GetTimelineHandler {
	return &GetTimelineHandler{milestoneRepo: milestoneRepo}
}

// Handle executes the GetTimelineQuery. The estimated delivery is the latest
// planned finish across the pipeline.
func (h *GetTimelineHandler) Handle(ctx context.Context, query GetTimelineQuery) (*TimelineView, error) {
	milestones, err := h.milestoneRepo.FindByProjectID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTimelineNotFound, query.ProjectID)
	}

	sort.Slice(milestones, func(i, j int) bool {
		return milestones[i].Position() < milestones[j].Position()
	})

	view := &TimelineView{
		ProjectID:  query.ProjectID,
		Milestones: make([]MilestoneView, 0, len(milestones)),
	}

	for _, m := range milestones {
		finish := m.PlannedFinish()
		if finish.After(view.EstimatedDelivery) {
			view.EstimatedDelivery = finish
		}
		if m.DerivedStatus() == domain.StatusDelayed {
			view.Delayed = true
		}
		view.Milestones = append(view.Milestones, MilestoneView{
			StageID:       m.StageID(),
			StageName:     m.StageName(),
			PlannedDate:   m.PlannedDate(),
			PlannedFinish: finish,
			CompletedDate: m.CompletedDate(),
			DerivedStatus: m.DerivedStatus().String(),
		})
	}

	return view, nil
}

// GetEstimatedDeliveryHandler answers only the delivery date.
type GetEstimatedDeliveryHandler struct {
	timeline *GetTimelineHandler
}

// NewGetEstimatedDeliveryHandler creates a new GetEstimatedDeliveryHandler.
func NewGetEstimatedDeliveryHandler(milestoneRepo domain.MilestoneRepository) *GetEstimatedDeliveryHandler {
	return &GetEstimatedDeliveryHandler{timeline: NewGetTimelineHandler(milestoneRepo)}
}

// Handle returns the project's estimated delivery date.
func (h *GetEstimatedDeliveryHandler) Handle(ctx context.Context, query GetTimelineQuery) (time.Time, error) {
	view, err := h.timeline.Handle(ctx, query)
	if err != nil {
		return time.Time{}, err
	}
	return view.EstimatedDelivery, nil
}
