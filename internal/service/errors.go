package service

import "errors"

// Errors returned by the services. Handlers map them to status codes with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("access denied")

	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")

	ErrUserNotFound     = errors.New("user not found")
	ErrCoachNotFound    = errors.New("coach not found")
	ErrRunnerNotFound   = errors.New("runner not found")
	ErrStorageDisabled  = errors.New("file storage is not configured")
	ErrUploadNotFound   = errors.New("uploaded file not found in storage")
	ErrUnsupportedImage = errors.New("only image uploads are allowed")

	ErrConnectionExists   = errors.New("a pending or accepted request already exists")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrNotConnected       = errors.New("runner has no accepted connection with this coach")

	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrSavedWorkoutNotFound = errors.New("saved workout not found")
)
