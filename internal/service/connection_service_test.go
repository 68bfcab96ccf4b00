package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/domain"
)

func TestConnectionService_RequestNotifiesCoach(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)

	conn, err := env.connections.Request(ctx, runner.ID, ConnectionRequest{
		CoachID:  coach.ID,
		Goal:     "first marathon",
		Distance: "42.2 km",
		Pace:     "5:45",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Equal(t, "5:45", conn.Pace)

	inbox := env.notifications(t, coach.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationInfo, inbox[0].Type)
	assert.Contains(t, inbox[0].Message, "runner")
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterNotificationsPushed.WithLabelValues("info")))

	_, err = env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: coach.ID})
	assert.ErrorIs(t, err, ErrConnectionExists)
}

func TestConnectionService_RequestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)

	_, err := env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: coach.ID, Pace: "fast"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.connections.Request(ctx, coach.ID, ConnectionRequest{CoachID: coach.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrCoachNotFound)

	other := env.register(t, "other", domain.RoleRunner)
	_, err = env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: other.ID})
	assert.ErrorIs(t, err, ErrCoachNotFound)
}

func TestConnectionService_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)
	stranger := env.register(t, "stranger", domain.RoleCoach)

	conn, err := env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: coach.ID})
	require.NoError(t, err)

	_, err = env.connections.UpdateStatus(ctx, stranger.ID, conn.ID, domain.ConnectionAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.connections.UpdateStatus(ctx, coach.ID, conn.ID, domain.ConnectionPending)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.connections.UpdateStatus(ctx, coach.ID, primitive.NewObjectID(), domain.ConnectionAccepted)
	assert.ErrorIs(t, err, ErrConnectionNotFound)

	updated, err := env.connections.UpdateStatus(ctx, coach.ID, conn.ID, domain.ConnectionRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionRejected, updated.Status)

	inbox := env.notifications(t, runner.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationError, inbox[0].Type)
	assert.Equal(t, "Coach coach rejected your coaching request", inbox[0].Message)

	// a rejected request frees the pair for a new one
	again, err := env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: coach.ID})
	require.NoError(t, err)
	_, err = env.connections.UpdateStatus(ctx, coach.ID, again.ID, domain.ConnectionAccepted)
	require.NoError(t, err)

	inbox = env.notifications(t, runner.ID)
	require.Len(t, inbox, 2)
	assert.Equal(t, domain.NotificationSuccess, inbox[0].Type)
	assert.Equal(t, "Coach coach accepted your coaching request", inbox[0].Message)
}

func TestConnectionService_ListForCoachAndCheck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)

	check, err := env.connections.Check(ctx, runner.ID, coach.ID)
	require.NoError(t, err)
	assert.False(t, check.Exists)

	_, err = env.users.UpdateProfile(ctx, runner.ID, domain.ProfileUpdate{City: "Faro"})
	require.NoError(t, err)
	env.connect(t, runner, coach)

	list, err := env.connections.ListForCoach(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "runner", list[0].Runner.Name)
	assert.Equal(t, "Faro", list[0].Runner.City)
	assert.Equal(t, domain.ConnectionAccepted, list[0].Status)

	check, err = env.connections.Check(ctx, runner.ID, coach.ID)
	require.NoError(t, err)
	assert.True(t, check.Exists)
	assert.Equal(t, domain.ConnectionAccepted, check.Status)

	connected, err := env.connections.IsConnected(ctx, runner.ID, coach.ID)
	require.NoError(t, err)
	assert.True(t, connected)
}
