package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridman/health-hub/internal/api"
	"fridman/health-hub/internal/config"
	"fridman/health-hub/internal/planner"
	"fridman/health-hub/internal/platform/logger"
	"fridman/health-hub/internal/repository/mongo"
	"fridman/health-hub/internal/service"
	"fridman/health-hub/internal/session"

	"github.com/gin-gonic/gin"
)

// @title Health Hub API
// @version 1.0
// @description Client portal for fitness coaching: patients, professionals and admins.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		os.Stderr.WriteString("could not load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		os.Stderr.WriteString("could not build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting health hub server", "address", cfg.Server.Address)

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established", "database", cfg.Database.Name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("workout_plans"))
		mongo.EnsureLogIndexes(ctx, appDB.Collection("workout_logs"))
		mongo.EnsureAppointmentIndexes(ctx, appDB.Collection("appointments"))
		mongo.EnsureMessageIndexes(ctx, appDB.Collection("messages"))
		mongo.EnsureNutritionIndexes(ctx, appDB.Collection("nutrition_plans"))
		log.Info("index creation completed")
	}()

	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	logRepo := mongo.NewMongoLogRepository(appDB)
	appointmentRepo := mongo.NewMongoAppointmentRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)
	nutritionRepo := mongo.NewMongoNutritionRepository(appDB)

	sessions := session.NewManager(logRepo, log)
	workbench := planner.NewWorkbench()

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	patientService := service.NewPatientService(userRepo, planRepo, logRepo, nutritionRepo, sessions)
	professionalService := service.NewProfessionalService(userRepo, planRepo, logRepo, appointmentRepo, nutritionRepo, workbench)
	adminService := service.NewAdminService(userRepo, planRepo, logRepo)
	chatService := service.NewChatService(messageRepo, log)

	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		userRepo,
		authService,
		patientService,
		professionalService,
		adminService,
		chatService,
	)

	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No write timeout: session and chat streams stay open for the
		// lifetime of the viewing client.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen and serve failed", "error", err)
		}
	}()
	log.Info("server listening", "address", cfg.Server.Address)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}
