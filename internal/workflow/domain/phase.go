package domain

import "strings"

// Phase is the canonical production phase of a project, derived from stage
// state. Projects move planning → shooting → editing → review → delivery →
// completed.
type Phase string

const (
	PhasePlanning  Phase = "planning"
	PhaseShooting  Phase = "shooting"
	PhaseEditing   Phase = "editing"
	PhaseReview    Phase = "review"
	PhaseDelivery  Phase = "delivery"
	PhaseCompleted Phase = "completed"
)

var phaseOrder = map[Phase]int{
	PhasePlanning:  0,
	PhaseShooting:  1,
	PhaseEditing:   2,
	PhaseReview:    3,
	PhaseDelivery:  4,
	PhaseCompleted: 5,
}

// IsValid checks if the phase is a known value.
func (p Phase) IsValid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// Order returns the position of the phase in the pipeline.
func (p Phase) Order() int {
	return phaseOrder[p]
}

// Before returns true if p comes earlier in the pipeline than other.
func (p Phase) Before(other Phase) bool {
	return phaseOrder[p] < phaseOrder[other]
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// phaseKeywords maps stage-name fragments to canonical phases, checked in
// pipeline order so "review edits" lands on review, not editing.
var phaseKeywords = []struct {
	phase    Phase
	keywords []string
}{
	{PhaseDelivery, []string{"deliver", "export", "upload", "handoff"}},
	{PhaseReview, []string{"review", "proof", "approv", "feedback"}},
	{PhaseEditing, []string{"edit", "retouch", "cull", "color", "grade"}},
	{PhaseShooting, []string{"shoot", "session", "capture"}},
	{PhasePlanning, []string{"plan", "scout", "brief", "prep"}},
}

// PhaseFromStageName maps a stage name to a canonical phase.
// Unrecognized names default to planning.
func PhaseFromStageName(name string) Phase {
	lower := strings.ToLower(name)
	for _, entry := range phaseKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.phase
			}
		}
	}
	return PhasePlanning
}
