// Package storage hands out short-lived URLs so browsers move profile
// pictures straight to and from the bucket without passing through the API.
package storage

import (
	"context"
	"time"
)

const DefaultPresignedURLExpiry = 15 * time.Minute

type FileStorage interface {
	// GeneratePresignedUploadURL signs a PUT for objectKey restricted to contentType.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
	// ObjectExists confirms the browser actually finished the PUT.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
}
