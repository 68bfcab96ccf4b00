package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/service"
)

var statusByError = []struct {
	err    error
	status int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrUnsupportedImage, http.StatusBadRequest},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotConnected, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrCoachNotFound, http.StatusNotFound},
	{service.ErrRunnerNotFound, http.StatusNotFound},
	{service.ErrConnectionNotFound, http.StatusNotFound},
	{service.ErrWorkoutNotFound, http.StatusNotFound},
	{service.ErrSavedWorkoutNotFound, http.StatusNotFound},
	{service.ErrUploadNotFound, http.StatusNotFound},
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrConnectionExists, http.StatusConflict},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable},
}

// respondServiceError maps a service error to its status code. Anything
// unknown is logged and hidden behind a generic 500.
func respondServiceError(c *gin.Context, err error) {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			abortWithError(c, m.status, err.Error())
			return
		}
	}
	log.Errorf("[%s %s]: %s", c.Request.Method, c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}

// objectIDParam parses a path parameter, aborting with 400 when malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}
