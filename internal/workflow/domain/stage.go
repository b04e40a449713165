package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
)

// StageSpec describes a stage to be created with its project.
// DependsOn refers to other specs in the same list by name.
type StageSpec struct {
	Name                   string
	Description            string
	Phase                  Phase
	EstimatedDurationHours float64
	DependsOn              []string
	Deliverables           []string
}

// Stage is one step in a project's production pipeline. Stages are created
// with their project and never deleted individually.
type Stage struct {
	sharedDomain.BaseEntity
	projectID              uuid.UUID
	name                   string
	description            string
	phase                  Phase
	status                 StageStatus
	progress               int
	estimatedDurationHours float64
	startedAt              *time.Time
	completedAt            *time.Time
	position               int
	dependencies           map[uuid.UUID]struct{}
	deliverables           []string
	assignedStaffIDs       map[sharedDomain.StaffID]struct{}
}

// NewStage creates a pending stage from a spec.
func NewStage(projectID uuid.UUID, spec StageSpec, position int) (*Stage, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: stage name cannot be empty", ErrValidation)
	}
	if spec.EstimatedDurationHours <= 0 {
		return nil, fmt.Errorf("%w: estimated duration must be positive, got %v", ErrValidation, spec.EstimatedDurationHours)
	}

	phase := spec.Phase
	if phase == "" {
		phase = PhaseFromStageName(name)
	}
	if !phase.IsValid() {
		return nil, fmt.Errorf("%w: unknown phase %q", ErrValidation, phase)
	}

	return &Stage{
		BaseEntity:             sharedDomain.NewBaseEntity(),
		projectID:              projectID,
		name:                   name,
		description:            strings.TrimSpace(spec.Description),
		phase:                  phase,
		status:                 StatusPending,
		progress:               0,
		estimatedDurationHours: spec.EstimatedDurationHours,
		position:               position,
		dependencies:           make(map[uuid.UUID]struct{}),
		deliverables:           append([]string(nil), spec.Deliverables...),
		assignedStaffIDs:       make(map[sharedDomain.StaffID]struct{}),
	}, nil
}

// Getters
func (s *Stage) ProjectID() uuid.UUID            { return s.projectID }
func (s *Stage) Name() string                    { return s.name }
func (s *Stage) Description() string             { return s.description }
func (s *Stage) Phase() Phase                    { return s.phase }
func (s *Stage) Status() StageStatus             { return s.status }
func (s *Stage) Progress() int                   { return s.progress }
func (s *Stage) EstimatedDurationHours() float64 { return s.estimatedDurationHours }
func (s *Stage) StartedAt() *time.Time           { return s.startedAt }
func (s *Stage) CompletedAt() *time.Time         { return s.completedAt }
func (s *Stage) Position() int                   { return s.position }
func (s *Stage) Deliverables() []string          { return append([]string(nil), s.deliverables...) }

// Dependencies returns the IDs of the stages this stage depends on.
func (s *Stage) Dependencies() []uuid.UUID {
	deps := make([]uuid.UUID, 0, len(s.dependencies))
	for id := range s.dependencies {
		deps = append(deps, id)
	}
	return deps
}

// DependsOn returns true if the stage depends on the given stage ID.
func (s *Stage) DependsOn(id uuid.UUID) bool {
	_, ok := s.dependencies[id]
	return ok
}

// AssignedStaffIDs returns the staff assigned to this stage.
func (s *Stage) AssignedStaffIDs() []sharedDomain.StaffID {
	ids := make([]sharedDomain.StaffID, 0, len(s.assignedStaffIDs))
	for id := range s.assignedStaffIDs {
		ids = append(ids, id)
	}
	return ids
}

// addDependency links this stage to a prerequisite. Self-reference is
// rejected here; cross-project and cycle checks happen at the graph level.
func (s *Stage) addDependency(id uuid.UUID) error {
	if id == s.ID() {
		return fmt.Errorf("%w: stage %q cannot depend on itself", ErrValidation, s.name)
	}
	s.dependencies[id] = struct{}{}
	return nil
}

// AssignStaff adds a staff member to the stage.
func (s *Stage) AssignStaff(staffID sharedDomain.StaffID) error {
	if staffID.IsEmpty() {
		return fmt.Errorf("%w: staff id cannot be empty", ErrValidation)
	}
	s.assignedStaffIDs[staffID] = struct{}{}
	s.Touch()
	return nil
}

// UnassignStaff removes a staff member from the stage.
func (s *Stage) UnassignStaff(staffID sharedDomain.StaffID) {
	delete(s.assignedStaffIDs, staffID)
	s.Touch()
}

// SetProgress records partial progress on an active stage.
// Progress edits are only legal while the stage is in_progress or delayed:
// a pending stage must stay at 0 and terminal stages admit no edits. The
// value 100 is reserved for the completed transition, which sets it.
func (s *Stage) SetProgress(value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("%w: %d is outside [0,100]", ErrInvalidProgress, value)
	}
	if s.status.IsTerminal() {
		return fmt.Errorf("%w: stage %q is %s", ErrInvalidProgress, s.name, s.status)
	}
	if s.status == StatusPending && value > 0 {
		return fmt.Errorf("%w: stage %q has not started", ErrInvalidProgress, s.name)
	}
	if value == 100 {
		return fmt.Errorf("%w: complete the stage to reach 100", ErrInvalidProgress)
	}
	s.progress = value
	s.Touch()
	return nil
}

// TransitionTo applies a stage-local transition. Dependency checks belong to
// the project aggregate, not here. Timestamps and the progress invariant
// (completed ⟺ 100) are maintained on the way through.
func (s *Stage) TransitionTo(target StageStatus, now time.Time) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}
	if !s.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s on stage %q", ErrIllegalTransition, s.status, target, s.name)
	}

	from := s.status
	s.status = target

	switch target {
	case StatusInProgress:
		if from == StatusPending {
			t := now
			s.startedAt = &t
		}
	case StatusCompleted:
		t := now
		s.completedAt = &t
		s.progress = 100
	}

	s.Touch()
	return nil
}

// RehydrateStage recreates a stage from persisted state.
func RehydrateStage(
	id uuid.UUID,
	projectID uuid.UUID,
	name string,
	description string,
	phase Phase,
	status StageStatus,
	progress int,
	estimatedDurationHours float64,
	startedAt *time.Time,
	completedAt *time.Time,
	position int,
	dependencies []uuid.UUID,
	deliverables []string,
	assignedStaffIDs []sharedDomain.StaffID,
	createdAt time.Time,
	updatedAt time.Time,
) *Stage {
	deps := make(map[uuid.UUID]struct{}, len(dependencies))
	for _, dep := range dependencies {
		deps[dep] = struct{}{}
	}
	staff := make(map[sharedDomain.StaffID]struct{}, len(assignedStaffIDs))
	for _, sid := range assignedStaffIDs {
		staff[sid] = struct{}{}
	}

	return &Stage{
		BaseEntity:             sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		projectID:              projectID,
		name:                   name,
		description:            description,
		phase:                  phase,
		status:                 status,
		progress:               progress,
		estimatedDurationHours: estimatedDurationHours,
		startedAt:              startedAt,
		completedAt:            completedAt,
		position:               position,
		dependencies:           deps,
		deliverables:           deliverables,
		assignedStaffIDs:       staff,
	}
}
