package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
)

const aggregateType = "Project"

// ProjectCreated is emitted when a project is created with its pipeline.
type ProjectCreated struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID `json:"project_id"`
	Name         string    `json:"name"`
	Priority     string    `json:"priority"`
	PlannedStart time.Time `json:"planned_start"`
	StageCount   int       `json:"stage_count"`
}

// NewProjectCreated creates a ProjectCreated event.
func NewProjectCreated(p *Project) *ProjectCreated {
	return &ProjectCreated{
		BaseEvent:    sharedDomain.NewBaseEvent(p.ID(), aggregateType, "workflow.project.created"),
		ProjectID:    p.ID(),
		Name:         p.Name(),
		Priority:     p.Priority().String(),
		PlannedStart: p.PlannedStart(),
		StageCount:   len(p.Stages()),
	}
}

// StageTransitioned is emitted on every successful stage transition. The
// timeline projector consumes it to update milestones.
type StageTransitioned struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID  `json:"project_id"`
	StageID      uuid.UUID  `json:"stage_id"`
	StageName    string     `json:"stage_name"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	ProjectPhase string     `json:"project_phase"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewStageTransitioned creates a StageTransitioned event.
func NewStageTransitioned(p *Project, s *Stage, from, to StageStatus) *StageTransitioned {
	return &StageTransitioned{
		BaseEvent:    sharedDomain.NewBaseEvent(p.ID(), aggregateType, "workflow.stage.transitioned"),
		ProjectID:    p.ID(),
		StageID:      s.ID(),
		StageName:    s.Name(),
		From:         from.String(),
		To:           to.String(),
		ProjectPhase: p.Phase().String(),
		CompletedAt:  s.CompletedAt(),
	}
}

// StageProgressUpdated is emitted when partial progress is recorded.
type StageProgressUpdated struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	StageID   uuid.UUID `json:"stage_id"`
	Progress  int       `json:"progress"`
}

// NewStageProgressUpdated creates a StageProgressUpdated event.
func NewStageProgressUpdated(p *Project, s *Stage) *StageProgressUpdated {
	return &StageProgressUpdated{
		BaseEvent: sharedDomain.NewBaseEvent(p.ID(), aggregateType, "workflow.stage.progress_updated"),
		ProjectID: p.ID(),
		StageID:   s.ID(),
		Progress:  s.Progress(),
	}
}

// ProjectArchived is emitted when a project is archived.
type ProjectArchived struct {
	sharedDomain.BaseEvent
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	ArchivedAt time.Time `json:"archived_at"`
}

// NewProjectArchived creates a ProjectArchived event.
func NewProjectArchived(p *Project) *ProjectArchived {
	archivedAt := time.Now().UTC()
	if p.ArchivedAt() != nil {
		archivedAt = *p.ArchivedAt()
	}
	return &ProjectArchived{
		BaseEvent:  sharedDomain.NewBaseEvent(p.ID(), aggregateType, "workflow.project.archived"),
		ProjectID:  p.ID(),
		Name:       p.Name(),
		ArchivedAt: archivedAt,
	}
}
