package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository"
	"runcoach/coaching-app/internal/storage"
)

const (
	dateLayout            = "2006-01-02"
	profilePictureFolder  = "profile-pictures"
	maxProfilePictureSize = 10 * megabyte
)

// PublicProfile is what other users may see about someone.
type PublicProfile struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Role              domain.Role `json:"role"`
	City              string      `json:"city,omitempty"`
	DateOfBirth       string      `json:"dateOfBirth,omitempty"`
	Bio               string      `json:"bio,omitempty"`
	ProfilePictureURL string      `json:"profilePictureUrl,omitempty"`
}

// ProfileInput mirrors the profile form; empty fields are left as they are.
type ProfileInput struct {
	City        string
	DateOfBirth string // YYYY-MM-DD
	Bio         string
}

// PictureUploadTicket is handed to the client for a direct PUT to storage.
type PictureUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

type PictureConfirmation struct {
	ObjectKey   string
	FileName    string
	ContentType string
	Size        int64
}

type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*PublicProfile, error)
	ListCoaches(ctx context.Context) ([]PublicProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, input ProfileInput) (*PublicProfile, error)
	RequestPictureUpload(ctx context.Context, userID primitive.ObjectID, fileName, contentType string) (*PictureUploadTicket, error)
	ConfirmPictureUpload(ctx context.Context, userID primitive.ObjectID, c PictureConfirmation) (*PublicProfile, error)
}

type userService struct {
	userRepo   repository.UserRepository
	uploadRepo repository.UploadRepository
	files      storage.FileStorage // nil when no bucket is configured
	coaches    *CoachDirectoryCache
}

func NewUserService(
	userRepo repository.UserRepository,
	uploadRepo repository.UploadRepository,
	files storage.FileStorage,
	coaches *CoachDirectoryCache,
) UserService {
	return &userService{
		userRepo:   userRepo,
		uploadRepo: uploadRepo,
		files:      files,
		coaches:    coaches,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	profile := s.publicProfile(ctx, user)
	return &profile, nil
}

func (s *userService) ListCoaches(ctx context.Context) ([]PublicProfile, error) {
	if cached, ok := s.coaches.Get(); ok {
		log.Tracef("coach directory served from cache (%d coaches)", len(cached))
		return cached, nil
	}

	users, err := s.userRepo.ListByRole(ctx, domain.RoleCoach)
	if err != nil {
		return nil, err
	}
	coaches := make([]PublicProfile, 0, len(users))
	for i := range users {
		coaches = append(coaches, s.publicProfile(ctx, &users[i]))
	}
	s.coaches.Set(coaches)
	return coaches, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, input ProfileInput) (*PublicProfile, error) {
	update := domain.ProfileUpdate{
		City: strings.TrimSpace(input.City),
		Bio:  strings.TrimSpace(input.Bio),
	}
	if dob := strings.TrimSpace(input.DateOfBirth); dob != "" {
		parsed, err := time.Parse(dateLayout, dob)
		if err != nil {
			return nil, fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", ErrInvalidInput)
		}
		if parsed.After(time.Now()) {
			return nil, fmt.Errorf("%w: dateOfBirth is in the future", ErrInvalidInput)
		}
		update.DateOfBirth = &parsed
	}

	if update.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}
	return s.applyUpdate(ctx, userID, update)
}

func (s *userService) applyUpdate(ctx context.Context, userID primitive.ObjectID, update domain.ProfileUpdate) (*PublicProfile, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsCoach() {
		s.coaches.Invalidate()
	}
	profile := s.publicProfile(ctx, user)
	return &profile, nil
}

func (s *userService) RequestPictureUpload(ctx context.Context, userID primitive.ObjectID, fileName, contentType string) (*PictureUploadTicket, error) {
	if s.files == nil {
		return nil, ErrStorageDisabled
	}
	ext, err := imageExtension(fileName, contentType)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("%s/%s/%s%s", profilePictureFolder, userID.Hex(), uuid.NewString(), ext)
	url, err := s.files.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &PictureUploadTicket{
		UploadURL: url,
		ObjectKey: objectKey,
		ExpiresIn: int(storage.DefaultPresignedURLExpiry.Seconds()),
	}, nil
}

func (s *userService) ConfirmPictureUpload(ctx context.Context, userID primitive.ObjectID, c PictureConfirmation) (*PublicProfile, error) {
	if s.files == nil {
		return nil, ErrStorageDisabled
	}
	// keys are minted per user; anything else is someone else's object
	if !strings.HasPrefix(c.ObjectKey, fmt.Sprintf("%s/%s/", profilePictureFolder, userID.Hex())) {
		return nil, ErrForbidden
	}
	if !strings.HasPrefix(c.ContentType, "image/") {
		return nil, ErrUnsupportedImage
	}
	if c.Size < 0 || c.Size > maxProfilePictureSize {
		return nil, fmt.Errorf("%w: picture must be at most %d bytes", ErrInvalidInput, maxProfilePictureSize)
	}

	exists, err := s.files.ObjectExists(ctx, c.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUploadNotFound
	}

	previous, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	latest, err := s.uploadRepo.GetLatestByUser(ctx, userID, domain.UploadProfilePicture)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if latest != nil && latest.S3ObjectKey == c.ObjectKey {
		// confirmed twice, usually a retried request
		profile := s.publicProfile(ctx, previous)
		return &profile, nil
	}

	_, err = s.uploadRepo.Create(ctx, &domain.Upload{
		UserID:      userID,
		Purpose:     domain.UploadProfilePicture,
		S3ObjectKey: c.ObjectKey,
		FileName:    c.FileName,
		ContentType: c.ContentType,
		Size:        c.Size,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	profile, err := s.applyUpdate(ctx, userID, domain.ProfileUpdate{ProfilePictureKey: c.ObjectKey})
	if err != nil {
		return nil, err
	}

	if previous.ProfilePictureKey != "" && previous.ProfilePictureKey != c.ObjectKey {
		if err := s.files.DeleteObject(ctx, previous.ProfilePictureKey); err != nil {
			log.Warnf("delete replaced profile picture %s: %s", previous.ProfilePictureKey, err)
		}
	}
	return profile, nil
}

func (s *userService) publicProfile(ctx context.Context, user *domain.User) PublicProfile {
	p := PublicProfile{
		ID:   user.ID.Hex(),
		Name: user.Name,
		Role: user.Role,
		City: user.City,
		Bio:  user.Bio,
	}
	if user.DateOfBirth != nil {
		p.DateOfBirth = user.DateOfBirth.Format(dateLayout)
	}
	if user.ProfilePictureKey != "" && s.files != nil {
		url, err := s.files.GeneratePresignedDownloadURL(ctx, user.ProfilePictureKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			log.Warnf("presign profile picture for %s: %s", user.ID.Hex(), err)
		} else {
			p.ProfilePictureURL = url
		}
	}
	return p
}

// imageExtension picks the object key extension, preferring the file name's.
func imageExtension(fileName, contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", ErrUnsupportedImage
	}
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		return ext, nil
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0], nil
	}
	return "", nil
}
