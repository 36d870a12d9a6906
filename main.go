package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"athlete-progression-system/handlers"
	"athlete-progression-system/middleware"
	"athlete-progression-system/models"
	"athlete-progression-system/services"
	"athlete-progression-system/utils"
	"athlete-progression-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 2 * 1024 * 1024 * 1024, // 2GB — proof videos
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	middleware.InitPrometheus()
	app.Use(middleware.MonitorMiddleware())
	app.Use(middleware.RateLimitMiddleware())
	go middleware.CleanupVisitors()

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Athlete{},
		&models.Domain{},
		&models.Category{},
		&models.EquipmentItem{},
		&models.ChallengeEquipment{},
		&models.Division{},
		&models.Challenge{},
		&models.Grade{},
		&models.Submission{},
		&models.ProgressionRecord{},
		&models.LevelThreshold{},
		&models.RankDefinition{},
		&models.RankRequirement{},
		&models.AthleteRank{},
		&models.ActivityMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	notifyURL := os.Getenv("NOTIFICATION_SERVICE_URL")
	if notifyURL == "" {
		log.Fatal("NOTIFICATION_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("GRADING_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("GRADING_SERVICE_TOKEN environment variable not set")
	}

	notifier := services.NewNotificationClient(notifyURL, serviceToken)
	catalogService := services.NewCatalogService(db)
	divisionService := services.NewDivisionService(db)
	challengeService := services.NewChallengeService(db)
	progressionService := services.NewProgressionService(db, notifier)
	submissionService := services.NewSubmissionService(db, progressionService, notifier)

	if err := catalogService.SeedLevelThresholds(); err != nil {
		log.Fatal("failed to seed level thresholds:", err)
	}

	identityURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}

	syncWorker := workers.NewAthleteSyncWorker(db, identityURL, "/api/v1/public/profiles", serviceToken)

	activitySyncClient := workers.NewActivitySyncClient(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollActivities(ctx, activitySyncClient, 30*time.Second)

	go func() {
		log.Println("Starting Athlete Sync Worker...")
		syncWorker.Start(ctx)
	}()

	challengeService.StartPublishScheduler()

	handlers.SetupSubmissionRoutes(app, submissionService, catalogService)
	handlers.SetupProgressionRoutes(app, progressionService, divisionService, catalogService)
	handlers.SetupCatalogRoutes(app, catalogService, challengeService)

	app.Get("/metrics", middleware.MetricsHandler())
	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Athlete Sync Worker running")
	log.Println("✅ Activity import polling running (every 30s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come through Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
