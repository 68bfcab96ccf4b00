package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/blocks"
	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/repository"
)

// ConnectionRequest is a runner asking a coach for coaching.
type ConnectionRequest struct {
	CoachID  primitive.ObjectID
	Goal     string
	Distance string
	Pace     string // MM:SS per km, optional
}

// RunnerSummary is the slice of a runner's profile a coach sees next to a request.
type RunnerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

type ConnectionWithRunner struct {
	domain.Connection
	Runner RunnerSummary `json:"runner"`
}

// ConnectionCheck answers "is there a request between these two".
type ConnectionCheck struct {
	Exists bool                    `json:"exists"`
	Status domain.ConnectionStatus `json:"status,omitempty"`
}

type ConnectionService interface {
	Request(ctx context.Context, runnerID primitive.ObjectID, req ConnectionRequest) (*domain.Connection, error)
	UpdateStatus(ctx context.Context, coachID, connectionID primitive.ObjectID, status domain.ConnectionStatus) (*domain.Connection, error)
	ListForCoach(ctx context.Context, coachID primitive.ObjectID) ([]ConnectionWithRunner, error)
	Check(ctx context.Context, runnerID, coachID primitive.ObjectID) (*ConnectionCheck, error)
	// IsConnected reports whether the pair has an accepted connection.
	IsConnected(ctx context.Context, runnerID, coachID primitive.ObjectID) (bool, error)
}

type connectionService struct {
	userRepo       repository.UserRepository
	connectionRepo repository.ConnectionRepository
	notifier       notifier
}

func NewConnectionService(
	userRepo repository.UserRepository,
	connectionRepo repository.ConnectionRepository,
	metricsManager *metrics.Manager,
) ConnectionService {
	return &connectionService{
		userRepo:       userRepo,
		connectionRepo: connectionRepo,
		notifier:       notifier{userRepo: userRepo, metrics: metricsManager},
	}
}

func (s *connectionService) Request(ctx context.Context, runnerID primitive.ObjectID, req ConnectionRequest) (*domain.Connection, error) {
	pace := strings.TrimSpace(req.Pace)
	if pace != "" {
		if _, ok := blocks.PaceToDecimalMinutes(pace); !ok {
			return nil, fmt.Errorf("%w: pace must be MM:SS", ErrInvalidInput)
		}
	}

	runner, err := s.userRepo.GetByID(ctx, runnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRunnerNotFound
		}
		return nil, err
	}
	if !runner.IsRunner() {
		return nil, ErrForbidden
	}

	coach, err := s.userRepo.GetByID(ctx, req.CoachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, ErrCoachNotFound
	}

	_, err = s.connectionRepo.FindActive(ctx, runnerID, coach.ID)
	if err == nil {
		return nil, ErrConnectionExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	conn := &domain.Connection{
		RunnerID: runnerID,
		CoachID:  coach.ID,
		Goal:     strings.TrimSpace(req.Goal),
		Distance: strings.TrimSpace(req.Distance),
		Pace:     pace,
		Status:   domain.ConnectionPending,
	}
	if _, err := s.connectionRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.notifier.notify(ctx, coach.ID, domain.NotificationInfo,
		fmt.Sprintf("%s sent you a coaching request", runner.Name))
	log.Debugf("runner %s requested coach %s", runnerID.Hex(), coach.ID.Hex())
	return conn, nil
}

func (s *connectionService) UpdateStatus(ctx context.Context, coachID, connectionID primitive.ObjectID, status domain.ConnectionStatus) (*domain.Connection, error) {
	if status != domain.ConnectionAccepted && status != domain.ConnectionRejected {
		return nil, fmt.Errorf("%w: status must be accepted or rejected", ErrInvalidInput)
	}

	conn, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	if conn.CoachID != coachID {
		return nil, ErrForbidden
	}

	updated, err := s.connectionRepo.UpdateStatus(ctx, connectionID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}

	coachName := "Your coach"
	if coach, err := s.userRepo.GetByID(ctx, coachID); err == nil {
		coachName = "Coach " + coach.Name
	}
	typ := domain.NotificationSuccess
	if status == domain.ConnectionRejected {
		typ = domain.NotificationError
	}
	s.notifier.notify(ctx, updated.RunnerID, typ,
		fmt.Sprintf("%s %s your coaching request", coachName, status))

	return updated, nil
}

func (s *connectionService) ListForCoach(ctx context.Context, coachID primitive.ObjectID) ([]ConnectionWithRunner, error) {
	conns, err := s.connectionRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	runners := make(map[primitive.ObjectID]RunnerSummary)
	result := make([]ConnectionWithRunner, 0, len(conns))
	for _, c := range conns {
		summary, ok := runners[c.RunnerID]
		if !ok {
			summary = RunnerSummary{ID: c.RunnerID.Hex()}
			runner, err := s.userRepo.GetByID(ctx, c.RunnerID)
			switch {
			case err == nil:
				summary.Name = runner.Name
				summary.City = runner.City
			case errors.Is(err, repository.ErrNotFound):
				log.Warnf("connection %s points at missing runner %s", c.ID.Hex(), c.RunnerID.Hex())
			default:
				return nil, err
			}
			runners[c.RunnerID] = summary
		}
		result = append(result, ConnectionWithRunner{Connection: c, Runner: summary})
	}
	return result, nil
}

func (s *connectionService) Check(ctx context.Context, runnerID, coachID primitive.ObjectID) (*ConnectionCheck, error) {
	conn, err := s.connectionRepo.Find(ctx, runnerID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ConnectionCheck{Exists: false}, nil
		}
		return nil, err
	}
	return &ConnectionCheck{Exists: true, Status: conn.Status}, nil
}

func (s *connectionService) IsConnected(ctx context.Context, runnerID, coachID primitive.ObjectID) (bool, error) {
	conn, err := s.connectionRepo.FindActive(ctx, runnerID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return conn.Status == domain.ConnectionAccepted, nil
}
