// Package memory keeps every repository in process memory. It backs the
// "memory" database backend for local runs and serves as the test double
// for the service and api packages.
package memory

import (
	"sort"
	"sync"

	"runcoach/coaching-app/internal/blocks"
	"runcoach/coaching-app/internal/domain"
)

// Store holds all collections behind one lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*domain.User
	connections map[string]*domain.Connection
	workouts    map[string]*domain.Workout
	saved       map[string]*domain.SavedWorkout
	uploads     map[string]*domain.Upload
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*domain.User),
		connections: make(map[string]*domain.Connection),
		workouts:    make(map[string]*domain.Workout),
		saved:       make(map[string]*domain.SavedWorkout),
		uploads:     make(map[string]*domain.Upload),
	}
}

func cloneBlocks(in []blocks.Block) []blocks.Block {
	if in == nil {
		return nil
	}
	out := make([]blocks.Block, len(in))
	for i, b := range in {
		out[i] = b
		out[i].Blocks = cloneBlocks(b.Blocks)
	}
	return out
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	if u.Notifications != nil {
		c.Notifications = append([]domain.Notification(nil), u.Notifications...)
	}
	return &c
}

func cloneWorkout(w *domain.Workout) *domain.Workout {
	c := *w
	c.Blocks = cloneBlocks(w.Blocks)
	return &c
}

func cloneSaved(s *domain.SavedWorkout) *domain.SavedWorkout {
	c := *s
	c.Blocks = cloneBlocks(s.Blocks)
	return &c
}

func sortStable[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
