package memory

import (
	"context"
	"time"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutRepository struct {
	s *Store
}

// NewWorkoutRepository returns a repository.WorkoutRepository over the store.
func NewWorkoutRepository(s *Store) repository.WorkoutRepository {
	return &workoutRepository{s: s}
}

func (r *workoutRepository) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.RunnerID == primitive.NilObjectID || workout.CoachID == primitive.NilObjectID || workout.Date.IsZero() {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	r.s.workouts[workout.ID.Hex()] = cloneWorkout(workout)
	return workout.ID, nil
}

func (r *workoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.workouts[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneWorkout(w), nil
}

func (r *workoutRepository) GetByRunnerID(_ context.Context, runnerID primitive.ObjectID) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	workouts := []domain.Workout{}
	for _, w := range r.s.workouts {
		if w.RunnerID == runnerID {
			workouts = append(workouts, *cloneWorkout(w))
		}
	}
	sortStable(workouts, func(a, b domain.Workout) bool {
		if a.Date.Equal(b.Date) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Date.Before(b.Date)
	})
	return workouts, nil
}

func (r *workoutRepository) Replace(_ context.Context, workout *domain.Workout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.s.workouts[workout.ID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	w.Title = workout.Title
	w.Date = workout.Date
	w.Notes = workout.Notes
	w.Blocks = cloneBlocks(workout.Blocks)
	w.UpdatedAt = time.Now().UTC()
	workout.UpdatedAt = w.UpdatedAt
	return nil
}

func (r *workoutRepository) Delete(_ context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.s.workouts[id.Hex()]
	if !ok || w.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.s.workouts, id.Hex())
	return nil
}

type savedWorkoutRepository struct {
	s *Store
}

// NewSavedWorkoutRepository returns a repository.SavedWorkoutRepository over the store.
func NewSavedWorkoutRepository(s *Store) repository.SavedWorkoutRepository {
	return &savedWorkoutRepository{s: s}
}

func (r *savedWorkoutRepository) Create(_ context.Context, saved *domain.SavedWorkout) (primitive.ObjectID, error) {
	if saved.CoachID == primitive.NilObjectID || saved.Title == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	saved.ID = primitive.NewObjectID()
	saved.CreatedAt = time.Now().UTC()
	r.s.saved[saved.ID.Hex()] = cloneSaved(saved)
	return saved.ID, nil
}

func (r *savedWorkoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SavedWorkout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.saved[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSaved(s), nil
}

func (r *savedWorkoutRepository) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.SavedWorkout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	saved := []domain.SavedWorkout{}
	for _, s := range r.s.saved {
		if s.CoachID == coachID {
			saved = append(saved, *cloneSaved(s))
		}
	}
	// newest first; ObjectIDs grow monotonically within a process
	sortStable(saved, func(a, b domain.SavedWorkout) bool {
		return a.ID.Hex() > b.ID.Hex()
	})
	return saved, nil
}

func (r *savedWorkoutRepository) Delete(_ context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.saved[id.Hex()]
	if !ok || s.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.s.saved, id.Hex())
	return nil
}
