package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	v1 "github.com/vinothroacs/kalyanmalai-backend/v1"
	v1handlers "github.com/vinothroacs/kalyanmalai-backend/v1/handlers"
	v1middleware "github.com/vinothroacs/kalyanmalai-backend/v1/middleware"
	v1services "github.com/vinothroacs/kalyanmalai-backend/v1/services"
	"gorm.io/gorm"
)

const serviceName = "kalyanmalai-backend"

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	utils.SetupLogging(utils.GetEnvOrDefault("LOG_LEVEL", "info"), utils.GetEnvOrDefault("LOG_FORMAT", "json"))
	slog.Info("Starting Kalyanmalai Backend initialization")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := monitoring.Setup(ctx, monitoring.Config{ServiceName: serviceName})
	if err != nil {
		slog.Error("Failed to set up metrics", "error", err)
		os.Exit(1)
	}

	dbConfig := v1.NewDatabaseConfig()
	gormDB, err := v1.ConnectGormDB(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to GORM database", "error", err)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	tokens, err := v1services.NewTokenService(jwtSecret, utils.GetEnvOrDefault("JWT_ISSUER", serviceName), v1services.SystemClock)
	if err != nil {
		slog.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}

	limiter, redisClient := setupLoginLimiter()
	publisher, closePublisher := setupEmailPublisher()
	blobs := setupBlobStore(ctx)

	v1Handler, err := v1handlers.NewV1Handler(gormDB, v1handlers.Dependencies{
		Tokens:  tokens,
		Limiter: limiter,
		Blobs:   blobs,
	})
	if err != nil {
		slog.Error("Failed to initialize V1 handler", "error", err)
		os.Exit(1)
	}

	if err := v1Handler.AuthService().EnsureAdmin(ctx, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		slog.Error("Failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	// Create a mux for API routes
	apiMux := http.NewServeMux()
	v1Handler.SetupV1Routes(apiMux)

	jwtAuthMiddleware := v1middleware.NewJWTAuthMiddleware(tokens)
	authorizationMiddleware := v1middleware.NewAuthorizationMiddleware()
	corsMiddleware := v1middleware.CORSMiddleware(v1middleware.DefaultCORSConfig())

	// Apply middleware chain (CORS -> JWT Auth -> Authorization) to the API mux ONLY
	protectedAPIHandler := corsMiddleware(
		jwtAuthMiddleware.AuthenticateJWT(
			authorizationMiddleware.AuthorizeRequest(apiMux),
		),
	)

	// Create the MAIN (top-level) mux for all incoming traffic
	topLevelMux := http.NewServeMux()
	topLevelMux.Handle("/health", utils.PanicRecoveryMiddleware(healthHandler(gormDB, dbConfig.Database)))
	topLevelMux.Handle("/metrics", monitoring.Handler())
	topLevelMux.Handle("/api/v1/", protectedAPIHandler)

	serverConfig := utils.DefaultServerConfig()
	server := utils.CreateServer(serverConfig, monitoring.HTTPMetricsMiddleware(topLevelMux))

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	emailWorker := v1services.NewEmailWorker(gormDB, publisher, v1services.SystemClock)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		emailWorker.Start(workerCtx)
	}()

	// Start server in a goroutine
	go func() {
		slog.Info("Kalyanmalai Backend starting", "port", serverConfig.Port, "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start Kalyanmalai Backend", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down Kalyanmalai Backend...")

	cancelWorker()
	<-workerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Error("Failed to flush metrics", "error", err)
	}

	if closePublisher != nil {
		if err := closePublisher(); err != nil {
			slog.Error("Failed to close RabbitMQ publisher", "error", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}

	// Gracefully close database connection
	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}

	slog.Info("Kalyanmalai Backend exited")
}

// setupLoginLimiter uses Redis when REDIS_ADDR is set and reachable, otherwise an in-process limiter
func setupLoginLimiter() (v1services.LoginLimiter, *redis.Client) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		slog.Info("REDIS_ADDR not set, using in-memory login limiter")
		return v1services.NewMemoryLoginLimiter(0, 0, v1services.SystemClock), nil
	}

	client, err := v1services.NewRedisClient(&v1services.RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       utils.GetEnvIntOrDefault("REDIS_DB", 0),
	})
	if err != nil {
		slog.Warn("Redis unavailable, using in-memory login limiter", "addr", addr, "error", err)
		return v1services.NewMemoryLoginLimiter(0, 0, v1services.SystemClock), nil
	}

	slog.Info("Using Redis login limiter", "addr", addr)
	return v1services.NewRedisLoginLimiter(client, 0, 0), client
}

// setupEmailPublisher uses RabbitMQ when RABBITMQ_URL is set, otherwise logs emails
func setupEmailPublisher() (v1services.EmailPublisher, func() error) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		slog.Info("RABBITMQ_URL not set, emails will be logged only")
		return v1services.LogPublisher{}, nil
	}

	publisher, err := v1services.NewRabbitMQPublisher(url, utils.GetEnvOrDefault("EMAIL_QUEUE", v1services.DefaultEmailQueue))
	if err != nil {
		slog.Warn("RabbitMQ unavailable, emails will be logged only", "error", err)
		return v1services.LogPublisher{}, nil
	}
	return publisher, publisher.Close
}

// setupBlobStore presigns against S3 when S3_BUCKET_NAME is set
func setupBlobStore(ctx context.Context) v1services.BlobStore {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		slog.Info("S3_BUCKET_NAME not set, uploads are disabled")
		return v1services.DisabledBlobStore{}
	}

	store, err := v1services.NewS3BlobStore(ctx, utils.GetEnvOrDefault("AWS_REGION", "ap-south-1"), bucket)
	if err != nil {
		slog.Warn("S3 unavailable, uploads are disabled", "bucket", bucket, "error", err)
		return v1services.DisabledBlobStore{}
	}
	return store
}

type dbHealth struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Database string `json:"database,omitempty"`
}

type healthStatus struct {
	Status   string   `json:"status"`
	Service  string   `json:"service"`
	Database dbHealth `json:"database"`
}

func healthHandler(db *gorm.DB, database string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "healthy", Service: serviceName}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if sqlDB, err := db.DB(); err != nil {
			status.Database = dbHealth{Status: "unhealthy", Error: fmt.Sprintf("failed to get sql.DB: %v", err)}
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status.Database = dbHealth{Status: "unhealthy", Error: err.Error()}
		} else {
			status.Database = dbHealth{Status: "healthy", Database: database}
		}

		statusCode := http.StatusOK
		if status.Database.Status != "healthy" {
			status.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
		utils.RespondWithJSON(w, statusCode, status)
	})
}
