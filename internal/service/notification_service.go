package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/repository"
)

type NotificationService interface {
	// List returns the caller's notifications, newest first.
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkAllSeen(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type notificationService struct {
	userRepo repository.UserRepository
}

func NewNotificationService(userRepo repository.UserRepository) NotificationService {
	return &notificationService{userRepo: userRepo}
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	list, err := s.userRepo.GetNotifications(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.Hex() > list[j].ID.Hex()
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *notificationService) MarkAllSeen(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	modified, err := s.userRepo.MarkNotificationsSeen(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return modified, nil
}

const pruneTimeout = time.Minute

// NotificationPruner periodically drops seen notifications older than the
// retention window, so embedded inboxes do not grow without bound.
type NotificationPruner struct {
	userRepo  repository.UserRepository
	metrics   *metrics.Manager
	retention time.Duration
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewNotificationPruner(userRepo repository.UserRepository, metricsManager *metrics.Manager, retention time.Duration) *NotificationPruner {
	return &NotificationPruner{
		userRepo:  userRepo,
		metrics:   metricsManager,
		retention: retention,
		now:       time.Now,
	}
}

// Start schedules pruning on a cron spec ("@daily", "0 3 * * *").
func (p *NotificationPruner) Start(schedule string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil {
		return errors.New("notification pruner already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		defer cancel()
		if _, err := p.PruneOnce(ctx); err != nil {
			log.Errorf("notification prune: %s", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	p.cron = c
	log.Infof("notification pruner scheduled [%s], retention %s", schedule, p.retention)
	return nil
}

// Stop waits for a running prune to finish.
func (p *NotificationPruner) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (p *NotificationPruner) PruneOnce(ctx context.Context) (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	cutoff := p.now().Add(-p.retention)
	touched, err := p.userRepo.PruneSeenNotifications(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	p.metrics.CounterNotificationsPruned.Inc()
	log.Debugf("notification prune removed entries from %d users (cutoff %s)", touched, cutoff.Format(time.RFC3339))
	return touched, nil
}
