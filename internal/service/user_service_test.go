package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository/memory"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)

	profile, err := env.profiles.UpdateProfile(ctx, runner.ID, ProfileInput{City: "Porto", DateOfBirth: "1990-04-12"})
	require.NoError(t, err)
	assert.Equal(t, "Porto", profile.City)
	assert.Equal(t, "1990-04-12", profile.DateOfBirth)

	// empty fields leave stored values alone
	profile, err = env.profiles.UpdateProfile(ctx, runner.ID, ProfileInput{Bio: "trail addict"})
	require.NoError(t, err)
	assert.Equal(t, "Porto", profile.City)
	assert.Equal(t, "trail addict", profile.Bio)

	_, err = env.profiles.UpdateProfile(ctx, runner.ID, ProfileInput{DateOfBirth: "12/04/1990"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.profiles.UpdateProfile(ctx, primitive.NewObjectID(), ProfileInput{City: "Nowhere"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	coach := env.register(t, "coach", domain.RoleCoach)

	profile, err := env.profiles.GetProfile(context.Background(), coach.ID)
	require.NoError(t, err)
	assert.Equal(t, coach.ID.Hex(), profile.ID)
	assert.Equal(t, domain.RoleCoach, profile.Role)
	assert.Empty(t, profile.ProfilePictureURL)

	_, err = env.profiles.GetProfile(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ListCoachesIsCachedUntilProfileChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.register(t, "coach", domain.RoleCoach)
	env.register(t, "runner", domain.RoleRunner)

	coaches, err := env.profiles.ListCoaches(ctx)
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Empty(t, coaches[0].City)

	// a write behind the service's back is not visible while cached
	_, err = env.users.UpdateProfile(ctx, coach.ID, domain.ProfileUpdate{City: "Braga"})
	require.NoError(t, err)
	coaches, err = env.profiles.ListCoaches(ctx)
	require.NoError(t, err)
	assert.Empty(t, coaches[0].City)

	_, err = env.profiles.UpdateProfile(ctx, coach.ID, ProfileInput{Bio: "marathon coach"})
	require.NoError(t, err)
	coaches, err = env.profiles.ListCoaches(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Braga", coaches[0].City)
	assert.Equal(t, "marathon coach", coaches[0].Bio)
}

func TestUserService_ProfilePictureFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)

	ticket, err := env.profiles.RequestPictureUpload(ctx, runner.ID, "Me.JPG", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.ObjectKey, "profile-pictures/"+runner.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(ticket.ObjectKey, ".jpg"))
	assert.NotEmpty(t, ticket.UploadURL)
	assert.Equal(t, 900, ticket.ExpiresIn)

	profile, err := env.profiles.ConfirmPictureUpload(ctx, runner.ID, PictureConfirmation{
		ObjectKey:   ticket.ObjectKey,
		FileName:    "Me.JPG",
		ContentType: "image/jpeg",
		Size:        2048,
	})
	require.NoError(t, err)
	assert.Contains(t, profile.ProfilePictureURL, "op=get")

	uploads := memory.NewUploadRepository(env.store)
	upload, err := uploads.GetLatestByUser(ctx, runner.ID, domain.UploadProfilePicture)
	require.NoError(t, err)
	assert.Equal(t, ticket.ObjectKey, upload.S3ObjectKey)

	// a retried confirmation records nothing new
	profile, err = env.profiles.ConfirmPictureUpload(ctx, runner.ID, PictureConfirmation{ObjectKey: ticket.ObjectKey, ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Contains(t, profile.ProfilePictureURL, "op=get")
	again, err := uploads.GetLatestByUser(ctx, runner.ID, domain.UploadProfilePicture)
	require.NoError(t, err)
	assert.Equal(t, upload.ID, again.ID)
	assert.Equal(t, "Me.JPG", again.FileName)
	exists, err := env.files.ObjectExists(ctx, ticket.ObjectKey)
	require.NoError(t, err)
	assert.True(t, exists)

	// replacing the picture removes the old object
	second, err := env.profiles.RequestPictureUpload(ctx, runner.ID, "new.png", "image/png")
	require.NoError(t, err)
	_, err = env.profiles.ConfirmPictureUpload(ctx, runner.ID, PictureConfirmation{ObjectKey: second.ObjectKey, ContentType: "image/png"})
	require.NoError(t, err)
	exists, err = env.files.ObjectExists(ctx, ticket.ObjectKey)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserService_ProfilePictureRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	other := env.register(t, "other", domain.RoleRunner)

	_, err := env.profiles.RequestPictureUpload(ctx, runner.ID, "notes.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	ticket, err := env.profiles.RequestPictureUpload(ctx, other.ID, "a.png", "image/png")
	require.NoError(t, err)
	_, err = env.profiles.ConfirmPictureUpload(ctx, runner.ID, PictureConfirmation{ObjectKey: ticket.ObjectKey, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrForbidden)

	missing := "profile-pictures/" + runner.ID.Hex() + "/never-uploaded.png"
	_, err = env.profiles.ConfirmPictureUpload(ctx, runner.ID, PictureConfirmation{ObjectKey: missing, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrUploadNotFound)

	noStorage := NewUserService(env.users, memory.NewUploadRepository(env.store), nil, env.coaches)
	_, err = noStorage.RequestPictureUpload(ctx, runner.ID, "a.png", "image/png")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
