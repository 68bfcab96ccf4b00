package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"runcoach/coaching-app/internal/api"
	"runcoach/coaching-app/internal/config"
	"runcoach/coaching-app/internal/logging"
	"runcoach/coaching-app/internal/metrics"
	"runcoach/coaching-app/internal/repository"
	"runcoach/coaching-app/internal/repository/memory"
	"runcoach/coaching-app/internal/repository/mongo"
	"runcoach/coaching-app/internal/service"
	"runcoach/coaching-app/internal/storage"
)

type repositories struct {
	users         repository.UserRepository
	connections   repository.ConnectionRepository
	workouts      repository.WorkoutRepository
	savedWorkouts repository.SavedWorkoutRepository
	uploads       repository.UploadRepository
	close         func()
}

// @title Running Coach API
// @version 1.0
// @description Coaches plan structured running workouts for the runners who accepted them.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	logging.Setup(cfg.Logging)
	log.Printf("starting coaching server, backend [%s]", cfg.Database.Backend)

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	repos, err := openRepositories(cfg.Database)
	if err != nil {
		log.Fatalf("could not open %s backend: %s", cfg.Database.Backend, err)
	}
	defer repos.close()

	fileStorage, err := newFileStorage(cfg)
	if err != nil {
		log.Fatalf("failed to initialize file storage: %s", err)
	}

	reg := metrics.NewRegistry()
	metricsManager := metrics.NewManager(cfg.Metrics.Namespace, cfg.Metrics.Subsystem, reg)

	coaches := service.NewCoachDirectoryCache(cfg.Cache.SizeMB, cfg.Cache.CoachesTTL)
	connectionService := service.NewConnectionService(repos.users, repos.connections, metricsManager)

	pruner := service.NewNotificationPruner(repos.users, metricsManager, cfg.Notifications.Retention)
	if cfg.Notifications.PruneSchedule != "" {
		if err := pruner.Start(cfg.Notifications.PruneSchedule); err != nil {
			log.Fatalf("failed to schedule notification pruning: %s", err)
		}
		defer pruner.Stop()
	}

	router := api.NewRouter(api.Dependencies{
		AuthService:         service.NewAuthService(repos.users, coaches, cfg.JWT.Secret, cfg.JWT.Expiration),
		UserService:         service.NewUserService(repos.users, repos.uploads, fileStorage, coaches),
		NotificationService: service.NewNotificationService(repos.users),
		ConnectionService:   connectionService,
		WorkoutService:      service.NewWorkoutService(repos.workouts, repos.users, connectionService, metricsManager),
		SavedWorkoutService: service.NewSavedWorkoutService(repos.savedWorkouts, metricsManager),
		Metrics:             metricsManager,
		Gatherer:            reg,
		AllowedOrigins:      cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSig := <-quit
	log.Printf("signal [%s] received, shutting down", receivedSig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	log.Println("server exiting")
}

func openRepositories(cfg config.DatabaseConfig) (*repositories, error) {
	if cfg.Backend == config.BackendMemory {
		log.Warnln("using the in-memory backend, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:         memory.NewUserRepository(store),
			connections:   memory.NewConnectionRepository(store),
			workouts:      memory.NewWorkoutRepository(store),
			savedWorkouts: memory.NewSavedWorkoutRepository(store),
			uploads:       memory.NewUploadRepository(store),
			close:         func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Name)
	log.Println("database connection established")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, db)
	}()

	return &repositories{
		users:         mongo.NewMongoUserRepository(db),
		connections:   mongo.NewMongoConnectionRepository(db),
		workouts:      mongo.NewMongoWorkoutRepository(db),
		savedWorkouts: mongo.NewMongoSavedWorkoutRepository(db),
		uploads:       mongo.NewMongoUploadRepository(db),
		close:         func() {
			log.Println("disconnecting mongodb")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Errorf("failed to disconnect mongodb: %s", err)
			}
		},
	}, nil
}

// newFileStorage returns S3 when a bucket is configured. The memory backend
// falls back to in-process storage; mongo without a bucket has none.
func newFileStorage(cfg config.Config) (storage.FileStorage, error) {
	if cfg.S3.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Storage(ctx, cfg.S3)
	}
	if cfg.Database.Backend == config.BackendMemory {
		return storage.NewMemoryStorage("http://" + cfg.Server.Address + "/files"), nil
	}
	log.Warnln("no s3 bucket configured, profile pictures are disabled")
	return nil, nil
}
