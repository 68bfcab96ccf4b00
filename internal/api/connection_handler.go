package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/service"
)

type ConnectionHandler struct {
	connectionService service.ConnectionService
}

func NewConnectionHandler(connectionService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

type CreateConnectionRequest struct {
	CoachID  string `json:"coachId" binding:"required"`
	Goal     string `json:"goal" binding:"max=500"`
	Distance string `json:"distance" binding:"max=50"`
	Pace     string `json:"pace" binding:"max=10"`
}

type UpdateConnectionStatusRequest struct {
	Status domain.ConnectionStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

// CreateConnection godoc
// @Summary Runner requests coaching from a coach
// @Tags Connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateConnectionRequest true "Request details"
// @Success 201 {object} domain.Connection
// @Failure 404 {object} gin.H "Coach not found"
// @Failure 409 {object} gin.H "A pending or accepted request already exists"
// @Router /connections [post]
func (h *ConnectionHandler) CreateConnection(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, err := primitive.ObjectIDFromHex(req.CoachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coachId format")
		return
	}

	conn, err := h.connectionService.Request(c.Request.Context(), caller.ID, service.ConnectionRequest{
		CoachID:  coachID,
		Goal:     req.Goal,
		Distance: req.Distance,
		Pace:     req.Pace,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

// UpdateStatus godoc
// @Summary Coach accepts or rejects a request
// @Tags Connections
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Param request body UpdateConnectionStatusRequest true "New status"
// @Success 200 {object} domain.Connection
// @Failure 403 {object} gin.H "Request addressed to another coach"
// @Router /connections/{id}/status [patch]
func (h *ConnectionHandler) UpdateStatus(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	connectionID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateConnectionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	conn, err := h.connectionService.UpdateStatus(c.Request.Context(), caller.ID, connectionID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) ListForCoach(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	coachID, ok := objectIDParam(c, "coachId")
	if !ok {
		return
	}
	if coachID != caller.ID {
		abortWithError(c, http.StatusForbidden, "Access denied: requests belong to another coach")
		return
	}

	list, err := h.connectionService.ListForCoach(c.Request.Context(), coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ConnectionHandler) Check(c *gin.Context) {
	runnerID, ok := objectIDParam(c, "runnerId")
	if !ok {
		return
	}
	coachID, ok := objectIDParam(c, "coachId")
	if !ok {
		return
	}

	check, err := h.connectionService.Check(c.Request.Context(), runnerID, coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}
