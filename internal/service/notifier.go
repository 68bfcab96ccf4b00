package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/repository"
)

// notifier appends notifications to a user's inbox. Delivery is best effort:
// the action that triggered it has already been persisted.
type notifier struct {
	userRepo repository.UserRepository
	metrics  *metrics.Manager
}

func (n notifier) notify(ctx context.Context, userID primitive.ObjectID, typ domain.NotificationType, message string) {
	err := n.userRepo.PushNotification(ctx, userID, domain.Notification{
		ID:        primitive.NewObjectID(),
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Warnf("push notification to user %s: %s", userID.Hex(), err)
		return
	}
	n.metrics.CounterNotificationsPushed.WithLabelValues(string(typ)).Inc()
}
