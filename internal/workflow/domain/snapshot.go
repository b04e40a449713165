package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageSnapshot is a read-only view of one stage.
type StageSnapshot struct {
	ID                     uuid.UUID   `json:"id"`
	Name                   string      `json:"name"`
	Description            string      `json:"description,omitempty"`
	Phase                  string      `json:"phase"`
	Status                 string      `json:"status"`
	Progress               int         `json:"progress"`
	EstimatedDurationHours float64     `json:"estimated_duration_hours"`
	StartedAt              *time.Time  `json:"started_at,omitempty"`
	CompletedAt            *time.Time  `json:"completed_at,omitempty"`
	Position               int         `json:"position"`
	Dependencies           []uuid.UUID `json:"dependencies,omitempty"`
	Deliverables           []string    `json:"deliverables,omitempty"`
	AssignedStaffIDs       []string    `json:"assigned_staff_ids,omitempty"`
	Eligible               bool        `json:"eligible"`
}

// TeamMemberSnapshot is a read-only view of one roster entry.
type TeamMemberSnapshot struct {
	StaffID    string `json:"staff_id"`
	Role       string `json:"role"`
	StageScope string `json:"stage_scope,omitempty"`
}

// ProjectSnapshot is the read-only view the aggregate exposes to hosting
// layers. Plain data only, no domain types leak out.
type ProjectSnapshot struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Priority       string               `json:"priority"`
	Phase          string               `json:"phase"`
	CurrentStageID *uuid.UUID           `json:"current_stage_id,omitempty"`
	PlannedStart   time.Time            `json:"planned_start"`
	ArchivedAt     *time.Time           `json:"archived_at,omitempty"`
	Stages         []StageSnapshot      `json:"stages"`
	Team           []TeamMemberSnapshot `json:"team,omitempty"`
	Version        int                  `json:"version"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Snapshot builds the read-only view of the project.
func (p *Project) Snapshot() ProjectSnapshot {
	stages := make([]StageSnapshot, 0, len(p.stages))
	for _, stage := range p.stages {
		staffIDs := make([]string, 0, len(stage.AssignedStaffIDs()))
		for _, sid := range stage.AssignedStaffIDs() {
			staffIDs = append(staffIDs, sid.String())
		}
		stages = append(stages, StageSnapshot{
			ID:                     stage.ID(),
			Name:                   stage.Name(),
			Description:            stage.Description(),
			Phase:                  stage.Phase().String(),
			Status:                 stage.Status().String(),
			Progress:               stage.Progress(),
			EstimatedDurationHours: stage.EstimatedDurationHours(),
			StartedAt:              stage.StartedAt(),
			CompletedAt:            stage.CompletedAt(),
			Position:               stage.Position(),
			Dependencies:           stage.Dependencies(),
			Deliverables:           stage.Deliverables(),
			AssignedStaffIDs:       staffIDs,
			Eligible:               p.canStart(stage),
		})
	}

	team := make([]TeamMemberSnapshot, 0, len(p.team))
	for _, member := range p.team {
		team = append(team, TeamMemberSnapshot{
			StaffID:    member.StaffID.String(),
			Role:       member.Role,
			StageScope: member.StageScope,
		})
	}

	return ProjectSnapshot{
		ID:             p.ID(),
		Name:           p.name,
		Priority:       p.priority.String(),
		Phase:          p.phase.String(),
		CurrentStageID: p.currentStageID,
		PlannedStart:   p.plannedStart,
		ArchivedAt:     p.archivedAt,
		Stages:         stages,
		Team:           team,
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}
