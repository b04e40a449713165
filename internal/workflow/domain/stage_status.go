package domain

// StageStatus represents the lifecycle state of a pipeline stage.
type StageStatus string

const (
	StatusPending    StageStatus = "pending"
	StatusInProgress StageStatus = "in_progress"
	StatusCompleted  StageStatus = "completed"
	StatusDelayed    StageStatus = "delayed"
	StatusSkipped    StageStatus = "skipped"
)

// stageTransitions is the legal transition table. Nothing re-enters pending.
var stageTransitions = map[StageStatus][]StageStatus{
	StatusPending:    {StatusInProgress, StatusSkipped},
	StatusInProgress: {StatusCompleted, StatusDelayed, StatusSkipped},
	StatusDelayed:    {StatusInProgress},
	StatusCompleted:  {},
	StatusSkipped:    {},
}

// IsValid checks if the status is a known value.
func (s StageStatus) IsValid() bool {
	_, ok := stageTransitions[s]
	return ok
}

// IsTerminal returns true for statuses that admit no further transitions.
func (s StageStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// SatisfiesDependency returns true if a dependency in this status unblocks
// its dependents.
func (s StageStatus) SatisfiesDependency() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// CanTransitionTo checks the stage-local state machine.
func (s StageStatus) CanTransitionTo(target StageStatus) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s StageStatus) String() string {
	return string(s)
}
