package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/service"
)

// Dependencies groups everything the router needs from main.
type Dependencies struct {
	AuthService         service.AuthService
	UserService         service.UserService
	NotificationService service.NotificationService
	ConnectionService   service.ConnectionService
	WorkoutService      service.WorkoutService
	SavedWorkoutService service.SavedWorkoutService

	Metrics        *metrics.Manager
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter builds a gin engine with the middleware chain and every route mounted.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		Recovery(deps.Metrics),
		RequestLogger(),
		Cors(deps.AllowedOrigins),
		RequestMetrics(deps.Metrics),
	)
	SetupRoutes(router, deps)
	return router
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService, deps.NotificationService)
	connectionHandler := NewConnectionHandler(deps.ConnectionService)
	workoutHandler := NewWorkoutHandler(deps.WorkoutService, deps.SavedWorkoutService)
	blocksHandler := NewBlocksHandler()

	authMiddleware := AuthMiddleware(deps.AuthService)
	coachOnly := RoleMiddleware(domain.RoleCoach)
	runnerOnly := RoleMiddleware(domain.RoleRunner)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		apiV1.GET("/users/coaches", userHandler.ListCoaches)
		apiV1.GET("/users/:id", userHandler.GetProfile)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		profileGroup := protected.Group("/profile")
		{
			profileGroup.PATCH("", userHandler.UpdateProfile)
			profileGroup.POST("/picture/upload-url", userHandler.RequestPictureUpload)
			profileGroup.POST("/picture/confirm", userHandler.ConfirmPictureUpload)
		}

		protected.GET("/users/:id/notifications", userHandler.GetNotifications)
		protected.PATCH("/users/:id/notifications/mark-seen", userHandler.MarkNotificationsSeen)

		connectionGroup := protected.Group("/connections")
		{
			connectionGroup.POST("", runnerOnly, connectionHandler.CreateConnection)
			connectionGroup.PATCH("/:id/status", coachOnly, connectionHandler.UpdateStatus)
			connectionGroup.GET("/coach/:coachId", coachOnly, connectionHandler.ListForCoach)
			connectionGroup.GET("/check/:runnerId/:coachId", connectionHandler.Check)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", coachOnly, workoutHandler.CreateWorkout)
			workoutGroup.GET("/runner/:id", workoutHandler.GetRunnerWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PATCH("/:id", coachOnly, workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", coachOnly, workoutHandler.DeleteWorkout)
		}

		savedGroup := protected.Group("/saved-workouts")
		savedGroup.Use(coachOnly)
		{
			savedGroup.POST("", workoutHandler.SaveWorkout)
			savedGroup.GET("/:coachId", workoutHandler.GetSavedWorkouts)
			savedGroup.DELETE("/:id", workoutHandler.DeleteSavedWorkout)
		}

		blocksGroup := protected.Group("/blocks")
		{
			blocksGroup.POST("/summary", blocksHandler.Summary)
			blocksGroup.GET("/templates", blocksHandler.Templates)
		}
	}
}
