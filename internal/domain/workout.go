package domain

import (
	"time"

	"runcoach/coaching-app/internal/blocks"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a dated session a coach schedules for a runner.
// The block tree is always written whole; the last save wins.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunnerID  primitive.ObjectID `bson:"runnerId" json:"runnerId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Date      time.Time          `bson:"date" json:"date"`
	Title     string             `bson:"title" json:"title"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Blocks    []blocks.Block     `bson:"blocks" json:"blocks"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SavedWorkout is a coach's reusable template. It has no runner or date.
type SavedWorkout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Title     string             `bson:"title" json:"title"`
	Blocks    []blocks.Block     `bson:"blocks" json:"blocks"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
