package repository

import (
	"context"
	"time"

	"runcoach/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrInvalid      = RepositoryError("invalid document")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Notifications are embedded in the user document, so they live here too.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update domain.ProfileUpdate) (*domain.User, error)

	PushNotification(ctx context.Context, userID primitive.ObjectID, n domain.Notification) error
	GetNotifications(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkNotificationsSeen(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// PruneSeenNotifications drops seen notifications created before the cutoff,
	// across all users. Returns the number of user documents touched.
	PruneSeenNotifications(ctx context.Context, before time.Time) (int64, error)
}

// ConnectionRepository defines the interface for coaching requests.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Connection, error)
	// Find returns the most recent connection between the pair.
	Find(ctx context.Context, runnerID, coachID primitive.ObjectID) (*domain.Connection, error)
	FindActive(ctx context.Context, runnerID, coachID primitive.ObjectID) (*domain.Connection, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Connection, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ConnectionStatus) (*domain.Connection, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByRunnerID(ctx context.Context, runnerID primitive.ObjectID) ([]domain.Workout, error) // sorted by date
	// Replace overwrites title, date, notes and blocks. Owners never change.
	Replace(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error // Ensure coach owns the workout
}

// SavedWorkoutRepository defines the interface for coach templates.
type SavedWorkoutRepository interface {
	Create(ctx context.Context, saved *domain.SavedWorkout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SavedWorkout, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.SavedWorkout, error)
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID, purpose domain.UploadPurpose) (*domain.Upload, error)
}
