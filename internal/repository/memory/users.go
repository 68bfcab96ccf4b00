package memory

import (
	"context"
	"strings"
	"time"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	s *Store
}

// NewUserRepository returns a repository.UserRepository over the store.
func NewUserRepository(s *Store) repository.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID.Hex()] = cloneUser(user)
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []domain.User{}
	for _, u := range r.s.users {
		if u.Role != role {
			continue
		}
		c := cloneUser(u)
		c.PasswordHash = ""
		c.Notifications = nil
		users = append(users, *c)
	}
	sortStable(users, func(a, b domain.User) bool {
		if a.Name == b.Name {
			return a.ID.Hex() < b.ID.Hex()
		}
		return a.Name < b.Name
	})
	return users, nil
}

func (r *userRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, update domain.ProfileUpdate) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.City != "" {
		u.City = update.City
	}
	if update.DateOfBirth != nil {
		dob := update.DateOfBirth.UTC()
		u.DateOfBirth = &dob
	}
	if update.Bio != "" {
		u.Bio = update.Bio
	}
	if update.ProfilePictureKey != "" {
		u.ProfilePictureKey = update.ProfilePictureKey
	}
	u.UpdatedAt = time.Now().UTC()

	c := cloneUser(u)
	c.Notifications = nil
	return c, nil
}

func (r *userRepository) PushNotification(_ context.Context, userID primitive.ObjectID, n domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	if n.ID == primitive.NilObjectID {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	u.Notifications = append(u.Notifications, n)
	return nil
}

func (r *userRepository) GetNotifications(_ context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]domain.Notification{}, u.Notifications...), nil
}

func (r *userRepository) MarkNotificationsSeen(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID.Hex()]
	if !ok {
		return 0, repository.ErrNotFound
	}
	var modified int64
	for i := range u.Notifications {
		if !u.Notifications[i].Seen {
			u.Notifications[i].Seen = true
			modified = 1
		}
	}
	return modified, nil
}

func (r *userRepository) PruneSeenNotifications(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var touched int64
	for _, u := range r.s.users {
		kept := u.Notifications[:0]
		for _, n := range u.Notifications {
			if n.Seen && n.CreatedAt.Before(before) {
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) != len(u.Notifications) {
			touched++
		}
		u.Notifications = kept
	}
	return touched, nil
}
