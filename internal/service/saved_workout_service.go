package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/blocks"
	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/repository"
)

type SavedWorkoutView struct {
	domain.SavedWorkout
	Summary blocks.Summary `json:"summary"`
}

// SavedWorkoutService manages a coach's reusable workout templates.
type SavedWorkoutService interface {
	Save(ctx context.Context, coachID primitive.ObjectID, title string, bs []blocks.Block) (*SavedWorkoutView, error)
	ListForCoach(ctx context.Context, coachID primitive.ObjectID) ([]SavedWorkoutView, error)
	Delete(ctx context.Context, coachID, savedID primitive.ObjectID) error
}

type savedWorkoutService struct {
	savedRepo repository.SavedWorkoutRepository
	metrics   *metrics.Manager
}

func NewSavedWorkoutService(savedRepo repository.SavedWorkoutRepository, metricsManager *metrics.Manager) SavedWorkoutService {
	return &savedWorkoutService{
		savedRepo: savedRepo,
		metrics:   metricsManager,
	}
}

func (s *savedWorkoutService) Save(ctx context.Context, coachID primitive.ObjectID, title string, bs []blocks.Block) (*SavedWorkoutView, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	normalized, err := normalizedBlocks(bs)
	if err != nil {
		return nil, err
	}

	saved := &domain.SavedWorkout{
		CoachID: coachID,
		Title:   title,
		Blocks:  normalized,
	}
	if _, err := s.savedRepo.Create(ctx, saved); err != nil {
		return nil, err
	}

	view := SavedWorkoutView{SavedWorkout: *saved, Summary: blocks.Summarize(saved.Blocks)}
	s.metrics.HistPlannedDistance.Observe(view.Summary.TotalDistanceKm)
	return &view, nil
}

func (s *savedWorkoutService) ListForCoach(ctx context.Context, coachID primitive.ObjectID) ([]SavedWorkoutView, error) {
	saved, err := s.savedRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	views := make([]SavedWorkoutView, 0, len(saved))
	for _, sw := range saved {
		views = append(views, SavedWorkoutView{SavedWorkout: sw, Summary: blocks.Summarize(sw.Blocks)})
	}
	return views, nil
}

func (s *savedWorkoutService) Delete(ctx context.Context, coachID, savedID primitive.ObjectID) error {
	saved, err := s.savedRepo.GetByID(ctx, savedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSavedWorkoutNotFound
		}
		return err
	}
	if saved.CoachID != coachID {
		return ErrForbidden
	}
	if err := s.savedRepo.Delete(ctx, savedID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSavedWorkoutNotFound
		}
		return err
	}
	return nil
}
