package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadPurpose says what an uploaded file is used for.
type UploadPurpose string

const (
	UploadProfilePicture UploadPurpose = "profile_picture"
)

// Upload stores metadata about a file uploaded by a user.
// The actual file resides in S3.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Purpose     UploadPurpose      `bson:"purpose" json:"purpose"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`           // internal use only
	FileName    string             `bson:"fileName" json:"fileName"`       // Original filename provided by the user
	ContentType string             `bson:"contentType" json:"contentType"` // MIME type, e.g. "image/jpeg"
	Size        int64              `bson:"size" json:"size"`               // bytes
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
