package domain

import "errors"

var (
	// ErrValidation indicates malformed input. Caller's fault, never retried.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidProgress indicates a progress value outside the legal range
	// or a progress edit on a terminal stage.
	ErrInvalidProgress = errors.New("invalid progress")

	// ErrIllegalTransition indicates a stage transition not in the state machine.
	ErrIllegalTransition = errors.New("illegal stage transition")

	// ErrDependencyNotSatisfied indicates a stage cannot start because a
	// dependency is not completed or skipped.
	ErrDependencyNotSatisfied = errors.New("stage dependencies not satisfied")

	// ErrCyclicDependency indicates a cycle in the stage dependency graph.
	// A live project must never exhibit this; it is rejected at construction.
	ErrCyclicDependency = errors.New("cyclic stage dependency")

	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrStageNotFound indicates the stage does not belong to the project.
	ErrStageNotFound = errors.New("stage not found")

	// ErrProjectArchived indicates a command against an archived project.
	ErrProjectArchived = errors.New("project is archived")
)
