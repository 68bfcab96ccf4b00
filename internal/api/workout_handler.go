package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"runcoach/coaching-app/internal/blocks"
	"runcoach/coaching-app/internal/service"
)

type WorkoutHandler struct {
	workoutService      service.WorkoutService
	savedWorkoutService service.SavedWorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService, savedWorkoutService service.SavedWorkoutService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService:      workoutService,
		savedWorkoutService: savedWorkoutService,
	}
}

type CreateWorkoutRequest struct {
	RunnerID string         `json:"runnerId" binding:"required"`
	Title    string         `json:"title" binding:"required,max=200"`
	Date     string         `json:"date" binding:"required"`
	Notes    string         `json:"notes" binding:"max=5000"`
	Blocks   []blocks.Block `json:"blocks"`
}

type UpdateWorkoutRequest struct {
	Title  string         `json:"title" binding:"required,max=200"`
	Date   string         `json:"date" binding:"required"`
	Notes  string         `json:"notes" binding:"max=5000"`
	Blocks []blocks.Block `json:"blocks"`
}

type SaveWorkoutRequest struct {
	Title  string         `json:"title" binding:"required,max=200"`
	Blocks []blocks.Block `json:"blocks"`
}

// CreateWorkout godoc
// @Summary Coach schedules a workout for a connected runner
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout"
// @Success 201 {object} service.WorkoutView
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Runner has not accepted this coach"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	runnerID, err := primitive.ObjectIDFromHex(req.RunnerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid runnerId format")
		return
	}

	view, err := h.workoutService.Create(c.Request.Context(), caller.ID, service.WorkoutInput{
		RunnerID: runnerID,
		Title:    req.Title,
		Date:     req.Date,
		Notes:    req.Notes,
		Blocks:   req.Blocks,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetRunnerWorkouts godoc
// @Summary A runner's calendar, sorted by date
// @Tags Workouts
// @Security BearerAuth
// @Param id path string true "Runner ID"
// @Success 200 {array} service.WorkoutView
// @Router /workouts/runner/{id} [get]
func (h *WorkoutHandler) GetRunnerWorkouts(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	runnerID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	views, err := h.workoutService.ListForRunner(c.Request.Context(), caller, runnerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.workoutService.Get(c.Request.Context(), caller, workoutID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	view, err := h.workoutService.Replace(c.Request.Context(), caller.ID, workoutID, service.WorkoutInput{
		Title:  req.Title,
		Date:   req.Date,
		Notes:  req.Notes,
		Blocks: req.Blocks,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), caller.ID, workoutID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Saved workouts (templates) ---

func (h *WorkoutHandler) SaveWorkout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	view, err := h.savedWorkoutService.Save(c.Request.Context(), caller.ID, req.Title, req.Blocks)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *WorkoutHandler) GetSavedWorkouts(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	coachID, ok := objectIDParam(c, "coachId")
	if !ok {
		return
	}
	if coachID != caller.ID {
		abortWithError(c, http.StatusForbidden, "Access denied: templates belong to another coach")
		return
	}

	views, err := h.savedWorkoutService.ListForCoach(c.Request.Context(), coachID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *WorkoutHandler) DeleteSavedWorkout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	savedID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.savedWorkoutService.Delete(c.Request.Context(), caller.ID, savedID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
