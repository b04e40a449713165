package domain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// validateDependencyGraph checks that every dependency refers to a stage in
// the same project and that the graph is acyclic. Called at construction and
// rehydration so a cyclic project can never be observed live.
func validateDependencyGraph(stages []*Stage) error {
	byID := make(map[uuid.UUID]*Stage, len(stages))
	for _, stage := range stages {
		byID[stage.ID()] = stage
	}

	for _, stage := range stages {
		for _, dep := range stage.Dependencies() {
			if _, ok := byID[dep]; !ok {
				return fmt.Errorf("%w: stage %q depends on unknown stage %s", ErrValidation, stage.Name(), dep)
			}
		}
	}

	if _, err := TopologicalOrder(stages); err != nil {
		return err
	}
	return nil
}

// TopologicalOrder returns the stages sorted so every stage comes after all
// of its dependencies. Ties are broken by pipeline position to keep the
// order deterministic. Fails with ErrCyclicDependency when the graph has a
// cycle.
func TopologicalOrder(stages []*Stage) ([]*Stage, error) {
	byID := make(map[uuid.UUID]*Stage, len(stages))
	indegree := make(map[uuid.UUID]int, len(stages))
	dependents := make(map[uuid.UUID][]uuid.UUID, len(stages))

	for _, stage := range stages {
		byID[stage.ID()] = stage
		indegree[stage.ID()] = 0
	}
	for _, stage := range stages {
		for _, dep := range stage.Dependencies() {
			if _, ok := byID[dep]; !ok {
				continue
			}
			indegree[stage.ID()]++
			dependents[dep] = append(dependents[dep], stage.ID())
		}
	}

	ready := make([]*Stage, 0, len(stages))
	for _, stage := range stages {
		if indegree[stage.ID()] == 0 {
			ready = append(ready, stage)
		}
	}
	sortByPosition(ready)

	ordered := make([]*Stage, 0, len(stages))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		var unblocked []*Stage
		for _, depID := range dependents[next.ID()] {
			indegree[depID]--
			if indegree[depID] == 0 {
				unblocked = append(unblocked, byID[depID])
			}
		}
		sortByPosition(unblocked)
		ready = append(ready, unblocked...)
	}

	if len(ordered) != len(stages) {
		return nil, fmt.Errorf("%w: %d of %d stages unreachable", ErrCyclicDependency, len(stages)-len(ordered), len(stages))
	}
	return ordered, nil
}

func sortByPosition(stages []*Stage) {
	sort.Slice(stages, func(i, j int) bool {
		return stages[i].Position() < stages[j].Position()
	})
}
