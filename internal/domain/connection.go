package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionStatus type for the coaching request lifecycle
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is a runner's coaching request to a coach.
// pending -> accepted | rejected. A rejected request can be followed by a new one.
type Connection struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunnerID  primitive.ObjectID `bson:"runnerId" json:"runnerId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Goal      string             `bson:"goal,omitempty" json:"goal,omitempty"`         // e.g. "Sub-50 10k"
	Distance  string             `bson:"distance,omitempty" json:"distance,omitempty"` // Target race distance as typed by the runner
	Pace      string             `bson:"pace,omitempty" json:"pace,omitempty"`         // Current pace, "MM:SS"
	Status    ConnectionStatus   `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the connection blocks a new request.
func (c *Connection) IsActive() bool {
	return c.Status == ConnectionPending || c.Status == ConnectionAccepted
}
