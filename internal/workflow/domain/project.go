package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lenslate/darkroom/internal/shared/domain"
)

// TeamMember is one entry in a project's roster.
type TeamMember struct {
	StaffID    sharedDomain.StaffID
	Role       string
	StageScope string // empty means all stages
}

// Project is the aggregate root for one unit of creative work. All mutating
// operations go through it so invariants spanning stages are never violated
// by a caller bypassing validation. Validate before mutate: a command either
// fully applies or fails before touching any state.
type Project struct {
	sharedDomain.BaseAggregateRoot
	name           string
	priority       Priority
	phase          Phase
	currentStageID *uuid.UUID
	plannedStart   time.Time
	archivedAt     *time.Time
	stages         []*Stage
	team           []TeamMember
}

// NewProject creates a project with its full stage pipeline. Dependencies in
// specs refer to earlier specs by name. The dependency graph is validated
// acyclic here; a cyclic pipeline never becomes a live project.
func NewProject(name string, priority Priority, plannedStart time.Time, specs []StageSpec) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name cannot be empty", ErrValidation)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: project needs at least one stage", ErrValidation)
	}
	if plannedStart.IsZero() {
		plannedStart = time.Now().UTC()
	}

	project := &Project{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		priority:          priority,
		phase:             PhasePlanning,
		plannedStart:      plannedStart,
		team:              make([]TeamMember, 0),
	}

	byName := make(map[string]*Stage, len(specs))
	stages := make([]*Stage, 0, len(specs))
	for i, spec := range specs {
		stage, err := NewStage(project.ID(), spec, i)
		if err != nil {
			return nil, err
		}
		if _, dup := byName[stage.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate stage name %q", ErrValidation, stage.Name())
		}
		byName[stage.Name()] = stage
		stages = append(stages, stage)
	}

	for i, spec := range specs {
		stage := stages[i]
		for _, depName := range spec.DependsOn {
			dep, ok := byName[strings.TrimSpace(depName)]
			if !ok {
				return nil, fmt.Errorf("%w: stage %q depends on unknown stage %q", ErrValidation, stage.Name(), depName)
			}
			if err := stage.addDependency(dep.ID()); err != nil {
				return nil, err
			}
		}
	}

	if err := validateDependencyGraph(stages); err != nil {
		return nil, err
	}

	project.stages = stages
	project.recomputeDerivedState()
	project.AddDomainEvent(NewProjectCreated(project))

	return project, nil
}

// Getters
func (p *Project) Name() string            { return p.name }
func (p *Project) Priority() Priority      { return p.priority }
func (p *Project) Phase() Phase            { return p.phase }
func (p *Project) PlannedStart() time.Time { return p.plannedStart }
func (p *Project) ArchivedAt() *time.Time  { return p.archivedAt }
func (p *Project) IsArchived() bool        { return p.archivedAt != nil }
func (p *Project) Stages() []*Stage        { return p.stages }
func (p *Project) Team() []TeamMember      { return append([]TeamMember(nil), p.team...) }

// CurrentStageID returns the stage the project is at: the in_progress stage,
// or the earliest pending stage whose dependencies are satisfied.
func (p *Project) CurrentStageID() *uuid.UUID {
	return p.currentStageID
}

// Stage finds a stage by ID.
func (p *Project) Stage(stageID uuid.UUID) (*Stage, error) {
	for _, stage := range p.stages {
		if stage.ID() == stageID {
			return stage, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStageNotFound, stageID)
}

// StageByName finds a stage by name.
func (p *Project) StageByName(name string) (*Stage, error) {
	for _, stage := range p.stages {
		if stage.Name() == name {
			return stage, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrStageNotFound, name)
}

// CanStart answers whether a stage is eligible to enter in_progress: it must
// be pending and every dependency completed or skipped. The aggregate never
// auto-picks among eligible stages; the caller chooses.
func (p *Project) CanStart(stageID uuid.UUID) (bool, error) {
	stage, err := p.Stage(stageID)
	if err != nil {
		return false, err
	}
	return p.canStart(stage), nil
}

func (p *Project) canStart(stage *Stage) bool {
	if stage.Status() != StatusPending {
		return false
	}
	for _, depID := range stage.Dependencies() {
		dep, err := p.Stage(depID)
		if err != nil || !dep.Status().SatisfiesDependency() {
			return false
		}
	}
	return true
}

// AdvanceStage transitions a stage, enforcing dependency gating for
// in_progress, then recomputes project phase and current stage and emits
// StageTransitioned.
func (p *Project) AdvanceStage(stageID uuid.UUID, target StageStatus) error {
	if p.IsArchived() {
		return fmt.Errorf("%w: %s", ErrProjectArchived, p.ID())
	}

	stage, err := p.Stage(stageID)
	if err != nil {
		return err
	}

	if target == StatusInProgress && stage.Status() == StatusPending && !p.canStart(stage) {
		return fmt.Errorf("%w: stage %q has unfinished dependencies", ErrDependencyNotSatisfied, stage.Name())
	}

	from := stage.Status()
	if err := stage.TransitionTo(target, time.Now().UTC()); err != nil {
		return err
	}

	p.recomputeDerivedState()
	p.Touch()
	p.AddDomainEvent(NewStageTransitioned(p, stage, from, target))

	return nil
}

// UpdateStageProgress records partial progress on a stage.
func (p *Project) UpdateStageProgress(stageID uuid.UUID, value int) error {
	if p.IsArchived() {
		return fmt.Errorf("%w: %s", ErrProjectArchived, p.ID())
	}

	stage, err := p.Stage(stageID)
	if err != nil {
		return err
	}

	if err := stage.SetProgress(value); err != nil {
		return err
	}

	p.Touch()
	p.AddDomainEvent(NewStageProgressUpdated(p, stage))
	return nil
}

// AddTeamMember adds a roster entry.
func (p *Project) AddTeamMember(member TeamMember) error {
	if p.IsArchived() {
		return fmt.Errorf("%w: %s", ErrProjectArchived, p.ID())
	}
	if member.StaffID.IsEmpty() {
		return fmt.Errorf("%w: staff id cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(member.Role) == "" {
		return fmt.Errorf("%w: role cannot be empty", ErrValidation)
	}
	for _, existing := range p.team {
		if existing.StaffID.Equals(member.StaffID) && existing.Role == member.Role {
			return nil
		}
	}
	p.team = append(p.team, member)
	p.Touch()
	return nil
}

// AssignStaffToStage assigns a staff member to a stage.
func (p *Project) AssignStaffToStage(stageID uuid.UUID, staffID sharedDomain.StaffID) error {
	if p.IsArchived() {
		return fmt.Errorf("%w: %s", ErrProjectArchived, p.ID())
	}
	stage, err := p.Stage(stageID)
	if err != nil {
		return err
	}
	if err := stage.AssignStaff(staffID); err != nil {
		return err
	}
	p.Touch()
	return nil
}

// Archive marks the whole project archived. Stages are never deleted
// individually; archiving the project is the only removal.
func (p *Project) Archive() error {
	if p.IsArchived() {
		return fmt.Errorf("%w: %s", ErrProjectArchived, p.ID())
	}
	now := time.Now().UTC()
	p.archivedAt = &now
	p.Touch()
	p.AddDomainEvent(NewProjectArchived(p))
	return nil
}

// recomputeDerivedState maintains the phase and currentStageID invariants.
// Phase is the most advanced phase among active (in_progress or delayed)
// stages; with none active, the phase of the earliest eligible pending
// stage; completed iff every stage is terminal.
func (p *Project) recomputeDerivedState() {
	allTerminal := true
	var activePhase *Phase
	var inProgressID *uuid.UUID

	for _, stage := range p.stages {
		if !stage.Status().IsTerminal() {
			allTerminal = false
		}
		switch stage.Status() {
		case StatusInProgress, StatusDelayed:
			phase := stage.Phase()
			if activePhase == nil || activePhase.Before(phase) {
				activePhase = &phase
			}
			if stage.Status() == StatusInProgress && inProgressID == nil {
				id := stage.ID()
				inProgressID = &id
			}
		}
	}

	if allTerminal {
		p.phase = PhaseCompleted
		p.currentStageID = nil
		return
	}

	if inProgressID != nil {
		p.currentStageID = inProgressID
	} else {
		p.currentStageID = p.earliestEligibleStageID()
	}

	if activePhase != nil {
		p.phase = *activePhase
		return
	}

	if p.currentStageID != nil {
		if stage, err := p.Stage(*p.currentStageID); err == nil {
			p.phase = stage.Phase()
			return
		}
	}
	p.phase = PhasePlanning
}

func (p *Project) earliestEligibleStageID() *uuid.UUID {
	for _, stage := range p.stages {
		if p.canStart(stage) {
			id := stage.ID()
			return &id
		}
	}
	return nil
}

// RehydrateProject recreates a project from persisted state without
// generating events. The dependency graph is re-validated so corrupt
// persisted state cannot resurface as a live cyclic project.
func RehydrateProject(
	id uuid.UUID,
	name string,
	priority Priority,
	phase Phase,
	currentStageID *uuid.UUID,
	plannedStart time.Time,
	archivedAt *time.Time,
	stages []*Stage,
	team []TeamMember,
	version int,
	createdAt time.Time,
	updatedAt time.Time,
) (*Project, error) {
	if err := validateDependencyGraph(stages); err != nil {
		return nil, err
	}

	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Project{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(baseEntity, version),
		name:              name,
		priority:          priority,
		phase:             phase,
		currentStageID:    currentStageID,
		plannedStart:      plannedStart,
		archivedAt:        archivedAt,
		stages:            stages,
		team:              team,
	}, nil
}
