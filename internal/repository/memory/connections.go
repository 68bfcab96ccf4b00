package memory

import (
	"context"
	"time"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type connectionRepository struct {
	s *Store
}

// NewConnectionRepository returns a repository.ConnectionRepository over the store.
func NewConnectionRepository(s *Store) repository.ConnectionRepository {
	return &connectionRepository{s: s}
}

func (r *connectionRepository) Create(_ context.Context, conn *domain.Connection) (primitive.ObjectID, error) {
	if conn.RunnerID == primitive.NilObjectID || conn.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	conn.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	if conn.Status == "" {
		conn.Status = domain.ConnectionPending
	}
	c := *conn
	r.s.connections[conn.ID.Hex()] = &c
	return conn.ID, nil
}

func (r *connectionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.connections[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *connectionRepository) Find(_ context.Context, runnerID, coachID primitive.ObjectID) (*domain.Connection, error) {
	return r.latest(func(c *domain.Connection) bool {
		return c.RunnerID == runnerID && c.CoachID == coachID
	})
}

func (r *connectionRepository) FindActive(_ context.Context, runnerID, coachID primitive.ObjectID) (*domain.Connection, error) {
	return r.latest(func(c *domain.Connection) bool {
		return c.RunnerID == runnerID && c.CoachID == coachID && c.IsActive()
	})
}

func (r *connectionRepository) latest(match func(*domain.Connection) bool) (*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.Connection
	for _, c := range r.s.connections {
		if !match(c) {
			continue
		}
		if found == nil || c.ID.Hex() > found.ID.Hex() {
			found = c
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (r *connectionRepository) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	conns := []domain.Connection{}
	for _, c := range r.s.connections {
		if c.CoachID == coachID {
			conns = append(conns, *c)
		}
	}
	sortStable(conns, func(a, b domain.Connection) bool {
		return a.ID.Hex() > b.ID.Hex()
	})
	return conns, nil
}

func (r *connectionRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.ConnectionStatus) (*domain.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.connections[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	return &cp, nil
}

type uploadRepository struct {
	s *Store
}

// NewUploadRepository returns a repository.UploadRepository over the store.
func NewUploadRepository(s *Store) repository.UploadRepository {
	return &uploadRepository{s: s}
}

func (r *uploadRepository) Create(_ context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.UserID == primitive.NilObjectID || upload.S3ObjectKey == "" || upload.Purpose == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.uploads {
		if u.S3ObjectKey == upload.S3ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()
	u := *upload
	r.s.uploads[upload.ID.Hex()] = &u
	return upload.ID, nil
}

func (r *uploadRepository) GetLatestByUser(_ context.Context, userID primitive.ObjectID, purpose domain.UploadPurpose) (*domain.Upload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.Upload
	for _, u := range r.s.uploads {
		if u.UserID != userID || u.Purpose != purpose {
			continue
		}
		if found == nil || u.ID.Hex() > found.ID.Hex() {
			found = u
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}
