package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/blocks"
	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/repository"
)

// WorkoutInput is what a coach submits from the workout dialog.
type WorkoutInput struct {
	RunnerID primitive.ObjectID
	Title    string
	Date     string // YYYY-MM-DD or RFC 3339
	Notes    string
	Blocks   []blocks.Block
}

// WorkoutView is a workout plus its derived estimates.
type WorkoutView struct {
	domain.Workout
	Summary blocks.Summary   `json:"summary"`
	Profile []blocks.Segment `json:"profile,omitempty"`
}

// Caller identifies who is asking, as taken from the bearer token.
type Caller struct {
	ID   primitive.ObjectID
	Role domain.Role
}

type WorkoutService interface {
	Create(ctx context.Context, coachID primitive.ObjectID, input WorkoutInput) (*WorkoutView, error)
	ListForRunner(ctx context.Context, caller Caller, runnerID primitive.ObjectID) ([]WorkoutView, error)
	Get(ctx context.Context, caller Caller, workoutID primitive.ObjectID) (*WorkoutView, error)
	Replace(ctx context.Context, coachID, workoutID primitive.ObjectID, input WorkoutInput) (*WorkoutView, error)
	Delete(ctx context.Context, coachID, workoutID primitive.ObjectID) error
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	connections ConnectionService
	notifier    notifier
	metrics     *metrics.Manager
}

func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	connections ConnectionService,
	metricsManager *metrics.Manager,
) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		connections: connections,
		notifier:    notifier{userRepo: userRepo, metrics: metricsManager},
		metrics:     metricsManager,
	}
}

func (s *workoutService) Create(ctx context.Context, coachID primitive.ObjectID, input WorkoutInput) (*WorkoutView, error) {
	workout, err := buildWorkout(input)
	if err != nil {
		return nil, err
	}

	connected, err := s.connections.IsConnected(ctx, input.RunnerID, coachID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, ErrNotConnected
	}

	workout.RunnerID = input.RunnerID
	workout.CoachID = coachID
	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}

	view := newWorkoutView(*workout, false)
	s.metrics.CounterWorkoutsCreated.Inc()
	s.metrics.HistPlannedDistance.Observe(view.Summary.TotalDistanceKm)
	s.notifier.notify(ctx, input.RunnerID, domain.NotificationInfo,
		fmt.Sprintf("New workout scheduled for %s: %s", workout.Date.Format(dateLayout), workout.Title))

	log.Debugf("coach %s scheduled workout %s for runner %s", coachID.Hex(), workout.ID.Hex(), input.RunnerID.Hex())
	return &view, nil
}

func (s *workoutService) ListForRunner(ctx context.Context, caller Caller, runnerID primitive.ObjectID) ([]WorkoutView, error) {
	if err := s.authorizeRunnerView(ctx, caller, runnerID); err != nil {
		return nil, err
	}

	workouts, err := s.workoutRepo.GetByRunnerID(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	views := make([]WorkoutView, 0, len(workouts))
	for _, w := range workouts {
		views = append(views, newWorkoutView(w, false))
	}
	return views, nil
}

func (s *workoutService) Get(ctx context.Context, caller Caller, workoutID primitive.ObjectID) (*WorkoutView, error) {
	workout, err := s.find(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if caller.ID != workout.RunnerID && caller.ID != workout.CoachID {
		return nil, ErrForbidden
	}
	view := newWorkoutView(*workout, true)
	return &view, nil
}

// Replace overwrites the editable fields; concurrent edits resolve to the last write.
func (s *workoutService) Replace(ctx context.Context, coachID, workoutID primitive.ObjectID, input WorkoutInput) (*WorkoutView, error) {
	existing, err := s.find(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if existing.CoachID != coachID {
		return nil, ErrForbidden
	}

	// a workout never moves to another runner
	input.RunnerID = existing.RunnerID
	replacement, err := buildWorkout(input)
	if err != nil {
		return nil, err
	}
	existing.Title = replacement.Title
	existing.Date = replacement.Date
	existing.Notes = replacement.Notes
	existing.Blocks = replacement.Blocks

	if err := s.workoutRepo.Replace(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	s.notifier.notify(ctx, existing.RunnerID, domain.NotificationInfo,
		fmt.Sprintf("Workout updated: %s", existing.Title))

	view := newWorkoutView(*existing, true)
	return &view, nil
}

func (s *workoutService) Delete(ctx context.Context, coachID, workoutID primitive.ObjectID) error {
	existing, err := s.find(ctx, workoutID)
	if err != nil {
		return err
	}
	if existing.CoachID != coachID {
		return ErrForbidden
	}
	if err := s.workoutRepo.Delete(ctx, workoutID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

func (s *workoutService) find(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// authorizeRunnerView lets runners read their own calendar and coaches read
// the calendar of runners who accepted them.
func (s *workoutService) authorizeRunnerView(ctx context.Context, caller Caller, runnerID primitive.ObjectID) error {
	if caller.ID == runnerID {
		return nil
	}
	if caller.Role != domain.RoleCoach {
		return ErrForbidden
	}
	connected, err := s.connections.IsConnected(ctx, runnerID, caller.ID)
	if err != nil {
		return err
	}
	if !connected {
		return ErrForbidden
	}
	return nil
}

func buildWorkout(input WorkoutInput) (*domain.Workout, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.RunnerID.IsZero() {
		return nil, fmt.Errorf("%w: runnerId is required", ErrInvalidInput)
	}
	date, err := parseWorkoutDate(input.Date)
	if err != nil {
		return nil, err
	}
	bs, err := normalizedBlocks(input.Blocks)
	if err != nil {
		return nil, err
	}
	return &domain.Workout{
		Title:  title,
		Date:   date,
		Notes:  strings.TrimSpace(input.Notes),
		Blocks: bs,
	}, nil
}

func parseWorkoutDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
}

// normalizedBlocks never returns nil so stored documents always carry an array.
// Trees too large to render are refused before they reach storage.
func normalizedBlocks(in []blocks.Block) ([]blocks.Block, error) {
	out := blocks.Normalize(in)
	if err := blocks.CheckSize(out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if out == nil {
		return []blocks.Block{}, nil
	}
	return out, nil
}

func newWorkoutView(w domain.Workout, withProfile bool) WorkoutView {
	view := WorkoutView{Workout: w, Summary: blocks.Summarize(w.Blocks)}
	if withProfile {
		view.Profile = blocks.Profile(w.Blocks)
	}
	return view
}
