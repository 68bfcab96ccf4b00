package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/blocks"
	"runcoach/coaching-app/internal/domain"
)

const intervalBlocksJSON = `[
  {"type": "Warmup", "durationType": "distance", "duration": "1", "distanceUnit": "km"},
  {"type": "repeat", "repeat": "3", "blocks": [
    {"type": "run", "durationType": "distance", "duration": 400, "distanceUnit": "M", "intensityType": "pace", "intensity": "4:30"},
    {"type": "rest", "durationType": "time", "duration": "2"}
  ]},
  {"type": "cooldown", "durationType": "time", "duration": "10", "intensityType": "pace", "intensity": "6:00"}
]`

func intervalBlocks(t *testing.T) []blocks.Block {
	t.Helper()
	var bs []blocks.Block
	require.NoError(t, json.Unmarshal([]byte(intervalBlocksJSON), &bs))
	return bs
}

func TestWorkoutService_CreateRequiresAcceptedConnection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)

	input := WorkoutInput{RunnerID: runner.ID, Title: "Intervals", Date: "2026-05-04", Blocks: intervalBlocks(t)}

	_, err := env.workouts.Create(ctx, coach.ID, input)
	assert.ErrorIs(t, err, ErrNotConnected)

	// pending is not enough
	_, err = env.connections.Request(ctx, runner.ID, ConnectionRequest{CoachID: coach.ID})
	require.NoError(t, err)
	_, err = env.workouts.Create(ctx, coach.ID, input)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestWorkoutService_CreateNormalizesAndSummarizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)
	env.connect(t, runner, coach)

	view, err := env.workouts.Create(ctx, coach.ID, WorkoutInput{
		RunnerID: runner.ID,
		Title:    " Intervals ",
		Date:     "2026-05-04",
		Blocks:   intervalBlocks(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "Intervals", view.Title)
	assert.Equal(t, blocks.TypeWarmup, view.Blocks[0].Type)
	assert.Equal(t, blocks.UnitMeters, view.Blocks[1].Blocks[0].DistanceUnit)
	assert.Equal(t, blocks.IntensityNone, view.Blocks[1].Blocks[1].IntensityType)

	// 1 + 3*(0.4 + 2/6) + 10/6 km
	assert.InDelta(t, 1+3*(0.4+2.0/6)+10.0/6, view.Summary.TotalDistanceKm, 1e-9)
	// 1*6 + 3*(0.4*4.5 + 2) + 10 min
	assert.InDelta(t, 6+3*(1.8+2)+10, view.Summary.TotalTimeMin, 1e-9)
	assert.Equal(t, 8, view.Summary.LeafCount)
	assert.Nil(t, view.Profile)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterWorkoutsCreated))

	inbox := env.notifications(t, runner.ID)
	require.NotEmpty(t, inbox)
	assert.Equal(t, "New workout scheduled for 2026-05-04: Intervals", inbox[0].Message)
}

func TestWorkoutService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.register(t, "coach", domain.RoleCoach)

	_, err := env.workouts.Create(ctx, coach.ID, WorkoutInput{RunnerID: primitive.NewObjectID(), Date: "2026-05-04"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.workouts.Create(ctx, coach.ID, WorkoutInput{RunnerID: primitive.NewObjectID(), Title: "x", Date: "May 4th"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.workouts.Create(ctx, coach.ID, WorkoutInput{Title: "x", Date: "2026-05-04"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.workouts.Create(ctx, coach.ID, WorkoutInput{
		RunnerID: primitive.NewObjectID(), Title: "x", Date: "2026-05-04", Blocks: oversizedBlocks(),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, blocks.ErrTooManyLeaves)
}

// oversizedBlocks expands to 100 x 100 x 2 leaves.
func oversizedBlocks() []blocks.Block {
	leaf := blocks.Block{Type: blocks.TypeRun, DurationType: blocks.DurationTime, Duration: "1"}
	inner := blocks.Block{Type: blocks.TypeRepeat, Repeat: 100, Blocks: []blocks.Block{leaf, leaf}}
	return []blocks.Block{{Type: blocks.TypeRepeat, Repeat: 100, Blocks: []blocks.Block{inner}}}
}

func TestWorkoutService_ReplaceRejectsOversizedBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)
	env.connect(t, runner, coach)

	view, err := env.workouts.Create(ctx, coach.ID, WorkoutInput{RunnerID: runner.ID, Title: "Intervals", Date: "2026-05-04", Blocks: intervalBlocks(t)})
	require.NoError(t, err)

	_, err = env.workouts.Replace(ctx, coach.ID, view.ID, WorkoutInput{Title: "Intervals", Date: "2026-05-04", Blocks: oversizedBlocks()})
	assert.ErrorIs(t, err, blocks.ErrTooManyLeaves)

	// the stored workout is untouched
	list, err := env.workouts.ListForRunner(ctx, Caller{ID: runner.ID, Role: domain.RoleRunner}, runner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8, list[0].Summary.LeafCount)
}

func TestWorkoutService_ReadAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)
	otherCoach := env.register(t, "other-coach", domain.RoleCoach)
	otherRunner := env.register(t, "other-runner", domain.RoleRunner)
	env.connect(t, runner, coach)

	for _, date := range []string{"2026-05-06", "2026-05-02"} {
		_, err := env.workouts.Create(ctx, coach.ID, WorkoutInput{
			RunnerID: runner.ID, Title: "Easy " + date, Date: date, Blocks: blocks.DefaultWorkoutBlocks(),
		})
		require.NoError(t, err)
	}

	list, err := env.workouts.ListForRunner(ctx, Caller{ID: runner.ID, Role: domain.RoleRunner}, runner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Easy 2026-05-02", list[0].Title)
	assert.InDelta(t, 4.0, list[0].Summary.TotalDistanceKm, 1e-9)

	_, err = env.workouts.ListForRunner(ctx, Caller{ID: coach.ID, Role: domain.RoleCoach}, runner.ID)
	require.NoError(t, err)

	_, err = env.workouts.ListForRunner(ctx, Caller{ID: otherCoach.ID, Role: domain.RoleCoach}, runner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.workouts.ListForRunner(ctx, Caller{ID: otherRunner.ID, Role: domain.RoleRunner}, runner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := env.workouts.Get(ctx, Caller{ID: runner.ID, Role: domain.RoleRunner}, list[0].ID)
	require.NoError(t, err)
	require.Len(t, view.Profile, 3)
	assert.InDelta(t, 4.0, view.Profile[2].CumulativeKm, 1e-9)

	_, err = env.workouts.Get(ctx, Caller{ID: otherCoach.ID, Role: domain.RoleCoach}, list[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.workouts.Get(ctx, Caller{ID: runner.ID, Role: domain.RoleRunner}, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutService_ReplaceAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runner := env.register(t, "runner", domain.RoleRunner)
	coach := env.register(t, "coach", domain.RoleCoach)
	otherCoach := env.register(t, "other-coach", domain.RoleCoach)
	env.connect(t, runner, coach)

	created, err := env.workouts.Create(ctx, coach.ID, WorkoutInput{
		RunnerID: runner.ID, Title: "Tempo", Date: "2026-05-04", Blocks: blocks.DefaultWorkoutBlocks(),
	})
	require.NoError(t, err)

	edit := WorkoutInput{Title: "Tempo v2", Date: "2026-05-05", Notes: "keep it honest", Blocks: []blocks.Block{blocks.NewRepeat()}}

	_, err = env.workouts.Replace(ctx, otherCoach.ID, created.ID, edit)
	assert.ErrorIs(t, err, ErrForbidden)

	replaced, err := env.workouts.Replace(ctx, coach.ID, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "Tempo v2", replaced.Title)
	assert.Equal(t, runner.ID, replaced.RunnerID)
	assert.Equal(t, 5, replaced.Date.Day())
	assert.Equal(t, 4, replaced.Summary.LeafCount)
	assert.NotNil(t, replaced.Profile)

	assert.ErrorIs(t, env.workouts.Delete(ctx, otherCoach.ID, created.ID), ErrForbidden)
	require.NoError(t, env.workouts.Delete(ctx, coach.ID, created.ID))
	assert.ErrorIs(t, env.workouts.Delete(ctx, coach.ID, created.ID), ErrWorkoutNotFound)
}
