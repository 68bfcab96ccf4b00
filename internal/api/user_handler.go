package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/service"
)

type UserHandler struct {
	userService         service.UserService
	notificationService service.NotificationService
}

func NewUserHandler(userService service.UserService, notificationService service.NotificationService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		notificationService: notificationService,
	}
}

type UpdateProfileRequest struct {
	City        string `json:"city" binding:"max=100"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
	Bio         string `json:"bio" binding:"max=2000"`
}

type PictureUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type PictureConfirmRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"min=0"`
}

// ListCoaches godoc
// @Summary Public coach directory
// @Tags Users
// @Produce json
// @Success 200 {array} service.PublicProfile
// @Router /users/coaches [get]
func (h *UserHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.userService.ListCoaches(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Only non-empty fields are applied.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} service.PublicProfile
// @Failure 400 {object} gin.H "Invalid date of birth"
// @Router /profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), caller.ID, service.ProfileInput{
		City:        req.City,
		DateOfBirth: req.DateOfBirth,
		Bio:         req.Bio,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RequestPictureUpload godoc
// @Summary Get a presigned URL to upload a profile picture
// @Tags Users
// @Security BearerAuth
// @Param request body PictureUploadRequest true "File info"
// @Success 200 {object} service.PictureUploadTicket
// @Failure 400 {object} gin.H "Not an image"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /profile/picture/upload-url [post]
func (h *UserHandler) RequestPictureUpload(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req PictureUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ticket, err := h.userService.RequestPictureUpload(c.Request.Context(), caller.ID, req.FileName, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *UserHandler) ConfirmPictureUpload(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req PictureConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	profile, err := h.userService.ConfirmPictureUpload(c.Request.Context(), caller.ID, service.PictureConfirmation{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetNotifications lists the caller's own inbox, newest first.
func (h *UserHandler) GetNotifications(c *gin.Context) {
	userID, ok := h.selfParam(c)
	if !ok {
		return
	}
	list, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UserHandler) MarkNotificationsSeen(c *gin.Context) {
	userID, ok := h.selfParam(c)
	if !ok {
		return
	}
	modified, err := h.notificationService.MarkAllSeen(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modified": modified})
}

// selfParam reads :id and insists it is the caller.
func (h *UserHandler) selfParam(c *gin.Context) (primitive.ObjectID, bool) {
	caller, ok := callerFromContext(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return primitive.NilObjectID, false
	}
	if userID != caller.ID {
		abortWithError(c, http.StatusForbidden, "Access denied: notifications belong to another user")
		return primitive.NilObjectID, false
	}
	return userID, true
}
