// Package domain holds the milestone projection: a derived, read-only view
// of when each pipeline stage should land. Milestones are recomputed from
// stage facts and never mutated by callers.
package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
)

// DerivedStatus classifies a milestone against the clock at recompute time.
// Delay detection is pull-based; there is no background timer.
type DerivedStatus string

const (
	StatusPending    DerivedStatus = "pending"
	StatusInProgress DerivedStatus = "in_progress"
	StatusCompleted  DerivedStatus = "completed"
	StatusDelayed    DerivedStatus = "delayed"
)

func (s DerivedStatus) String() string { return string(s) }

// Milestone is the projected schedule entry for one stage. PlannedDate is the
// planned start, the latest planned finish among its dependencies anchored at
// the project start.
type Milestone struct {
	sharedDomain.BaseEntity
	projectID     uuid.UUID
	stageID       uuid.UUID
	stageName     string
	position      int
	plannedDate   time.Time
	durationHours float64
	completedDate *time.Time
	derivedStatus DerivedStatus
}

// NewMilestone creates a milestone from projected facts.
func NewMilestone(
	projectID uuid.UUID,
	stageID uuid.UUID,
	stageName string,
	position int,
	plannedDate time.Time,
	durationHours float64,
	completedDate *time.Time,
	derivedStatus DerivedStatus,
) *Milestone {
	return &Milestone{
		BaseEntity:    sharedDomain.NewBaseEntity(),
		projectID:     projectID,
		stageID:       stageID,
		stageName:     stageName,
		position:      position,
		plannedDate:   plannedDate,
		durationHours: durationHours,
		completedDate: completedDate,
		derivedStatus: derivedStatus,
	}
}

func (m *Milestone) ProjectID() uuid.UUID         { return m.projectID }
func (m *Milestone) StageID() uuid.UUID           { return m.stageID }
func (m *Milestone) StageName() string            { return m.stageName }
func (m *Milestone) Position() int                { return m.position }
func (m *Milestone) PlannedDate() time.Time       { return m.plannedDate }
func (m *Milestone) DurationHours() float64       { return m.durationHours }
func (m *Milestone) CompletedDate() *time.Time    { return m.completedDate }
func (m *Milestone) DerivedStatus() DerivedStatus { return m.derivedStatus }

// PlannedFinish is the planned start plus the stage's estimated duration.
func (m *Milestone) PlannedFinish() time.Time {
	return m.plannedDate.Add(time.Duration(m.durationHours * float64(time.Hour)))
}

// RehydrateMilestone recreates a milestone from persisted state.
func RehydrateMilestone(
	id uuid.UUID,
	projectID uuid.UUID,
	stageID uuid.UUID,
	stageName string,
	position int,
	plannedDate time.Time,
	durationHours float64,
	completedDate *time.Time,
	derivedStatus DerivedStatus,
	createdAt time.Time,
	updatedAt time.Time,
) *Milestone {
	return &Milestone{
		BaseEntity:    sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		projectID:     projectID,
		stageID:       stageID,
		stageName:     stageName,
		position:      position,
		plannedDate:   plannedDate,
		durationHours: durationHours,
		completedDate: completedDate,
		derivedStatus: derivedStatus,
	}
}
