package application

import (
	"sync"

	"github.com/google/uuid"
)

// ProjectLocks serializes commands per project. The transition engine reads
// several stages before writing one, so all commands against one project
// must run single-writer; different projects proceed in parallel.
type ProjectLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewProjectLocks creates an empty lock registry.
func NewProjectLocks() *ProjectLocks {
	return &ProjectLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the lock for a project and returns the unlock function.
func (l *ProjectLocks) Lock(projectID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[projectID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// WithLock runs fn while holding the project's lock.
func (l *ProjectLocks) WithLock(projectID uuid.UUID, fn func() error) error {
	unlock := l.Lock(projectID)
	defer unlock()
	return fn()
}
