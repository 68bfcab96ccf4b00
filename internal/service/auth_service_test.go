package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository/memory"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "  Mia ", "Mia@Example.com", "password123", domain.RoleRunner)
	require.NoError(t, err)
	assert.Equal(t, "Mia", user.Name)
	assert.Equal(t, "mia@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	token, loggedIn, err := env.auth.Login(ctx, "MIA@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	uid, role, err := env.auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)
	assert.Equal(t, domain.RoleRunner, role)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     domain.Role
	}{
		{"missing name", "a@b.io", "password123", domain.RoleRunner},
		{"bad email", "not-an-email", "password123", domain.RoleRunner},
		{"short password", "a@b.io", "short", domain.RoleRunner},
		{"unknown role", "a@b.io", "password123", domain.Role("admin")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "Someone"
			if tt.name == "missing name" {
				name = ""
			}
			_, err := env.auth.Register(ctx, name, tt.email, tt.password, tt.role)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dup", domain.RoleCoach)

	_, err := env.auth.Register(context.Background(), "Other", "DUP@example.com", "password123", domain.RoleRunner)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "runner", domain.RoleRunner)
	ctx := context.Background()

	_, _, err := env.auth.Login(ctx, "runner@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = env.auth.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = env.auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_ParseTokenRejectsForeignAndExpired(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "runner", domain.RoleRunner)
	ctx := context.Background()

	other := NewAuthService(memory.NewUserRepository(env.store), env.coaches, "another-secret", time.Hour)
	token, _, err := other.Login(ctx, "runner@example.com", "password123")
	require.NoError(t, err)

	_, _, err = env.auth.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = env.auth.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := &authService{userRepo: env.users, coaches: env.coaches, jwtSecret: testSecret, jwtExpiration: -time.Minute}
	token, _, err = expired.Login(ctx, "runner@example.com", "password123")
	require.NoError(t, err)
	_, _, err = env.auth.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_CoachRegistrationInvalidatesDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "first", domain.RoleCoach)

	coaches, err := env.profiles.ListCoaches(ctx)
	require.NoError(t, err)
	require.Len(t, coaches, 1)

	env.register(t, "second", domain.RoleCoach)

	coaches, err = env.profiles.ListCoaches(ctx)
	require.NoError(t, err)
	assert.Len(t, coaches, 2)
}
