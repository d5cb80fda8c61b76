package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axevisa/visa-backend/internal/config"
	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/handlers"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/axevisa/visa-backend/pkg/gemini"
	"github.com/axevisa/visa-backend/pkg/googleauth"
	"github.com/axevisa/visa-backend/pkg/jwt"
	"github.com/axevisa/visa-backend/pkg/mailer"
	"github.com/axevisa/visa-backend/pkg/razorpay"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Axe Visa backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Repositories
	userRepo := database.NewUserRepository(db)
	visaRepo := database.NewVisaApplicationRepository(db)
	passportRepo := database.NewPassportRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	packageRepo := database.NewPackageRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	assessmentRepo := database.NewAssessmentRepository(db)
	emergencyRepo := database.NewEmergencyVisaRepository(db)
	ticketRepo := database.NewTicketRepository(db)
	documentRepo := database.NewDocumentRepository(db)
	contactRepo := database.NewContactRepository(db)

	// Clients
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	mail := mailer.New(cfg.SMTP, logger)
	geminiClient := gemini.NewClient(cfg.Gemini)
	razorpayClient := razorpay.NewClient(cfg.Razorpay)
	googleClient := googleauth.NewClient(cfg.OAuth)

	// Services
	otpService := services.NewOTPService(userRepo, cfg.OTP.ExpiryMinutes)
	rateLimitService := services.NewRateLimitService(db, cfg.OTP.RateLimit, cfg.OTP.RateWindowMinutes)
	auditService := services.NewAuditService(db)
	appIDService := services.NewApplicationIDService(visaRepo)
	checklistService := services.NewChecklistService(visaRepo, notificationRepo, logger)
	assessmentService := services.NewAssessmentService(geminiClient, assessmentRepo, logger)
	requirementService, err := services.NewRequirementService(cfg.Data.VisaRequirementsCSV, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load visa requirements dataset")
	}
	paymentService := services.NewPaymentService(
		razorpayClient, paymentRepo, visaRepo, passportRepo,
		packageRepo, settingsRepo, mail, logger,
	)

	// Handlers
	files := handlers.NewFileStore(cfg.Upload)
	authHandler := handlers.NewAuthHandler(jwtService, otpService, rateLimitService, auditService, userRepo, googleClient, mail, cfg, logger)
	userHandler := handlers.NewUserHandler(userRepo, visaRepo, passportRepo, paymentRepo, documentRepo, ticketRepo, notificationRepo, files, logger)
	visaHandler := handlers.NewVisaHandler(visaRepo, appIDService, checklistService, notificationRepo, files, logger)
	passportHandler := handlers.NewPassportHandler(passportRepo, files, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService, userRepo, logger)
	expertHandler := handlers.NewExpertHandler(visaRepo, passportRepo, checklistService, mail, logger)
	adminHandler := handlers.NewAdminHandler(
		userRepo, visaRepo, passportRepo, paymentRepo, packageRepo, settingsRepo,
		ticketRepo, contactRepo, emergencyRepo, assessmentRepo, notificationRepo,
		checklistService, mail, cfg, logger,
	)
	publicHandler := handlers.NewPublicHandler(emergencyRepo, contactRepo, packageRepo, settingsRepo, assessmentService, requirementService, files, mail, logger)
	healthHandler := handlers.NewHealthHandler(db)

	aiLimiter := middleware.NewAIRateLimiter(redisClient, cfg.RateLimit, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)
	router.Static("/uploads", cfg.Upload.Dir)

	public := router.Group("/api/public")
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/request-otp", authHandler.RequestOTP)
		public.POST("/verify-otp", authHandler.VerifyOTP)
		public.POST("/forgot-password", authHandler.ForgotPassword)
		public.POST("/reset-password", authHandler.ResetPassword)
		public.GET("/auth/google", authHandler.GoogleRedirect)
		public.GET("/auth/google/callback", authHandler.GoogleCallback)

		public.POST("/emergency-visa", publicHandler.CreateEmergencyRequest)
		public.POST("/contact", publicHandler.CreateContactQuery)
		public.GET("/packages", publicHandler.ListPackages)
		public.GET("/settings", publicHandler.GetSettings)
		public.POST("/visa-requirement", publicHandler.CheckRequirement)

		aiTimeout := time.Duration(cfg.RateLimit.AITimeoutSeconds) * time.Second
		public.POST("/ai-checker",
			middleware.BodySizeLimit(cfg.RateLimit.AIMaxBodyBytes),
			middleware.RequestTimeout(aiTimeout),
			aiLimiter.Limit(),
			publicHandler.CheckVisa,
		)
	}

	user := router.Group("/api/user")
	user.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleUser))
	{
		user.GET("/profile", userHandler.GetProfile)
		user.PUT("/profile", userHandler.UpdateProfile)

		user.POST("/documents", userHandler.UploadDocuments)
		user.PUT("/documents/:id", userHandler.UpdateDocument)
		user.GET("/documents", userHandler.ListDocuments)

		user.POST("/visa/draft", visaHandler.CreateDraft)
		user.PUT("/visa/draft/:id", visaHandler.UpdateDraft)
		user.POST("/visa/draft/:id/submit", visaHandler.Submit)
		user.GET("/visa", visaHandler.List)
		user.GET("/visa/:id", visaHandler.Get)
		user.POST("/visa/:id/checklist/:itemId", visaHandler.UploadChecklistDocument)

		user.POST("/passport", passportHandler.Create)
		user.GET("/passport", passportHandler.List)
		user.GET("/passport/:id", passportHandler.Get)

		user.POST("/payments/order", paymentHandler.CreateOrder)
		user.POST("/payments/verify", paymentHandler.Verify)
		user.GET("/payments", userHandler.ListPayments)

		user.POST("/tickets", userHandler.CreateTicket)
		user.GET("/tickets", userHandler.ListTickets)
		user.GET("/tickets/:id", userHandler.GetTicket)
		user.POST("/tickets/:id/messages", userHandler.ReplyTicket)

		user.GET("/notifications", userHandler.ListNotifications)
		user.PUT("/notifications/:id/read", userHandler.MarkNotificationRead)

		user.GET("/stats", userHandler.Stats)
	}

	expert := router.Group("/api/expert")
	expert.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleExpert))
	{
		expert.GET("/visa", expertHandler.ListVisas)
		expert.GET("/visa/:id", expertHandler.GetVisa)
		expert.PUT("/visa/:id/status", expertHandler.UpdateVisaStatus)
		expert.POST("/visa/:id/checklist", expertHandler.AddChecklistItem)
		expert.PUT("/visa/:id/checklist/:itemId", expertHandler.ReviewChecklistItem)

		expert.GET("/passport", expertHandler.ListPassports)
		expert.GET("/passport/:id", expertHandler.GetPassport)
		expert.PUT("/passport/:id/status", expertHandler.UpdatePassportStatus)

		expert.GET("/stats", expertHandler.Stats)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/visa", adminHandler.ListVisas)
		admin.GET("/visa/:id", adminHandler.GetVisa)
		admin.PUT("/visa/:id/assign", adminHandler.AssignVisaExpert)
		admin.PUT("/visa/:id/status", adminHandler.UpdateVisaStatus)
		admin.POST("/visa/:id/checklist", adminHandler.AddChecklistItem)
		admin.PUT("/visa/:id/checklist/:itemId", adminHandler.ReviewChecklistItem)

		admin.GET("/passport", adminHandler.ListPassports)
		admin.GET("/passport/:id", adminHandler.GetPassport)
		admin.PUT("/passport/:id/assign", adminHandler.AssignPassportExpert)
		admin.PUT("/passport/:id/status", adminHandler.UpdatePassportStatus)

		admin.GET("/emergency-visa", adminHandler.ListEmergencyRequests)
		admin.GET("/emergency-visa/:id", adminHandler.GetEmergencyRequest)
		admin.PUT("/emergency-visa/:id/status", adminHandler.UpdateEmergencyStatus)

		admin.GET("/payments", adminHandler.ListPayments)

		admin.GET("/packages", adminHandler.ListPackages)
		admin.POST("/packages", adminHandler.CreatePackage)
		admin.PUT("/packages/:id", adminHandler.UpdatePackage)
		admin.DELETE("/packages/:id", adminHandler.DeletePackage)

		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.UpdateSettings)

		admin.GET("/tickets", adminHandler.ListTickets)
		admin.GET("/tickets/:id", adminHandler.GetTicket)
		admin.POST("/tickets/:id/messages", adminHandler.ReplyTicket)
		admin.PUT("/tickets/:id/close", adminHandler.CloseTicket)

		admin.GET("/contact", adminHandler.ListContactQueries)
		admin.PUT("/contact/:id/resolve", adminHandler.ResolveContactQuery)

		admin.GET("/assessments", adminHandler.ListAssessments)
		admin.GET("/assessments/:id", adminHandler.GetAssessment)

		admin.GET("/notifications", adminHandler.ListNotifications)

		admin.GET("/experts", adminHandler.ListExperts)
		admin.POST("/experts", adminHandler.CreateExpert)
		admin.PUT("/experts/:id", adminHandler.UpdateExpert)
		admin.PUT("/users/:id/active", adminHandler.SetUserActive)

		admin.POST("/emails", adminHandler.SendEmail)

		admin.GET("/stats", adminHandler.Stats)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request completed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}
