package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrayerRoom/controllers"
	"github.com/PrayerRoom/initializers"
	"github.com/PrayerRoom/middlewares"
	"github.com/PrayerRoom/services"
)

func main() {
	if err := initializers.LoadEnv(); err != nil {
		log.Fatal(err)
	}

	logger, err := initializers.NewLogger(initializers.Env.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := initializers.ConnectDB(initializers.Env.DBURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if initializers.Env.RunMigrations {
		if err := initializers.RunMigrations(ctx, db); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	services.InitEmailService(initializers.Env.ResendAPIKey, initializers.Env.ResendFromEmail, initializers.Env.PastoralEmail, logger)
	services.InitPushNotificationService(ctx, initializers.Env.FirebaseServiceAccountPath, initializers.Env.PastoralPushTopic, logger)
	notifier := services.NewPastoralNotifier(services.GetEmailService(), services.GetPushNotificationService(), logger)

	sessions := controllers.NewSessionRegistry(initializers.Env.SessionTTL)
	controllers.Configure(logger, sessions, notifier)
	sessions.StartPruning(ctx, time.Minute)
	go pruneLimiters(ctx, time.Minute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  initializers.Env.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middlewares.DeviceHeader},
		ExposeHeaders: []string{middlewares.DeviceHeader},
		MaxAge:        12 * time.Hour,
	}))

	getKey := middlewares.ClientIPKey

	router.GET("/ping", middlewares.RateLimitMiddleware("ping", 2, 2, getKey), controllers.Ping)
	router.GET("/phone/format", middlewares.RateLimitMiddleware("phone", 20, 20, getKey), controllers.FormatPhone)

	submissions := router.Group("/submissions")
	submissions.Use(middlewares.RateLimitMiddleware("submissions", 2, 5, getKey))
	{
		submissions.POST("", controllers.CreateSubmission)
		submissions.GET("/:session_id", controllers.GetSubmission)
		submissions.PUT("/:session_id", controllers.ResubmitSubmission)
		submissions.POST("/:session_id/resolve", controllers.ResolveSubmissionConflict)
	}

	rooms := router.Group("/rooms")
	rooms.Use(middlewares.RateLimitMiddleware("rooms", 10, 10, getKey))
	rooms.Use(middlewares.DeviceID)
	{
		rooms.POST("", controllers.CreateRoom)
		rooms.GET("/:session_id", controllers.GetRoom)
		rooms.POST("/:session_id/load", controllers.LoadRoom)
		rooms.POST("/:session_id/next", controllers.NextPrayer)
		rooms.POST("/:session_id/restart", controllers.RestartRoom)
		rooms.POST("/:session_id/toggle", controllers.TogglePrayed)
	}

	logger.Info("starting server", zap.String("port", initializers.Env.Port))
	if err := router.Run(":" + initializers.Env.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func pruneLimiters(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			middlewares.PruneLimiters(now)
		}
	}
}
