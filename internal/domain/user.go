package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCoach  Role = "coach"
	RoleRunner Role = "runner"
)

// User represents a user in the system (either a Coach or a Runner).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique index
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Profile ---
	City              string     `bson:"city,omitempty" json:"city,omitempty"`
	DateOfBirth       *time.Time `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Bio               string     `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePictureKey string     `bson:"profilePictureKey,omitempty" json:"-"` // S3 object key, resolved to a presigned URL on read

	// Embedded, newest last. Pruned by the notification retention job.
	Notifications []Notification `bson:"notifications,omitempty" json:"-"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsRunner() bool {
	return u.Role == RoleRunner
}

// ProfileUpdate carries the optional profile fields; zero values are left untouched.
type ProfileUpdate struct {
	City              string
	DateOfBirth       *time.Time
	Bio               string
	ProfilePictureKey string
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.City == "" && p.DateOfBirth == nil && p.Bio == "" && p.ProfilePictureKey == ""
}
