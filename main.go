package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"nssc-portal/config"
	adminControllers "nssc-portal/controllers/admin"
	authControllers "nssc-portal/controllers/auth"
	candidateControllers "nssc-portal/controllers/candidate"
	filesControllers "nssc-portal/controllers/files"
	"nssc-portal/database"
	"nssc-portal/logger"
	"nssc-portal/mailer"
	"nssc-portal/middleware"
	adminRoutes "nssc-portal/routers/adminRoutes"
	authRoutes "nssc-portal/routers/authRoutes"
	candidateRoutes "nssc-portal/routers/candidateRoutes"
	fileRoutes "nssc-portal/routers/fileRoutes"
	"nssc-portal/services"
	"nssc-portal/store"
	"nssc-portal/utils"
)

const otpRetention = 24 * time.Hour

func main() {
	cfg := config.LoadConfig()
	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	db, err := database.ConnectDb(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to the database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		zlog.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	files, err := store.NewMinioFileStore(ctx, cfg, logger.Named(zlog, "files"))
	if err != nil {
		zlog.Fatal("Failed to initialise file storage", zap.Error(err))
	}

	docs := store.NewGormStore(db, store.NewRedisNotifier(rdb, logger.Named(zlog, "notifier")), logger.Named(zlog, "docstore"))
	snaps := store.NewRedisSnapshotStore(rdb)
	mail := mailer.New(cfg, logger.Named(zlog, "mailer"))

	authService := services.NewAuthService(db, rdb, cfg.JWTKey, cfg.SaltRound, logger.Named(zlog, "auth"))
	otpService := services.NewOTPService(db, mail, cfg.OTPValidity, logger.Named(zlog, "otp"))
	registrationService := services.NewRegistrationService(authService, otpService, docs, logger.Named(zlog, "registration"))
	profileService := services.NewProfileService(docs, snaps, files, logger.Named(zlog, "profile"))
	applicationService := services.NewApplicationService(docs, logger.Named(zlog, "applications"))
	appointmentService := services.NewAppointmentService(applicationService, files, logger.Named(zlog, "appointments"))
	adminService := services.NewAdminService(db, authService, applicationService, docs, logger.Named(zlog, "admin"))
	settingsService := services.NewSettingsService(docs, logger.Named(zlog, "settings"))

	scheduler, err := utils.InitializeOTPScheduler(db, logger.Named(zlog, "scheduler"), otpRetention)
	if err != nil {
		zlog.Fatal("Failed to start OTP scheduler", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    6 * 1024 * 1024,
		ErrorHandler: errorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,Last-Event-ID",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	requireAuth := middleware.JWTMiddleware(cfg.JWTKey, authService)

	authRoutes.SetupAuthRoutes(app, authControllers.New(authService, otpService, registrationService, zlog), requireAuth)
	candidateRoutes.SetupCandidateRoutes(app, candidateControllers.New(profileService, applicationService, appointmentService, zlog), requireAuth, db)
	adminRoutes.SetupAdminRoutes(app, adminControllers.New(adminService, settingsService, zlog), requireAuth, db)
	fileRoutes.SetupFileRoutes(app, filesControllers.New(files, store.NewFileLinks(cfg.PublicURL, cfg.JWTKey), zlog))

	go func() {
		<-ctx.Done()
		zlog.Info("Shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("Server is running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func errorHandler(zlog *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong!"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			zlog.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return middleware.JsonResponse(c, code, false, message, nil)
	}
}
