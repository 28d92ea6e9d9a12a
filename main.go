package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zenithroofing/lead-service/pkg/api"
	"github.com/zenithroofing/lead-service/pkg/clients/jobnimbus"
	"github.com/zenithroofing/lead-service/pkg/clients/recaptcha"
	"github.com/zenithroofing/lead-service/pkg/clients/sendgrid"
	"github.com/zenithroofing/lead-service/pkg/config"
	"github.com/zenithroofing/lead-service/pkg/middleware"
	"github.com/zenithroofing/lead-service/pkg/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	// Initialize API clients
	crmClient := jobnimbus.NewClient(
		cfg.CRMAPIKey,
		cfg.CRMContactEndpoint,
		jobnimbus.SchemeFromString(cfg.CRMAuthScheme),
		cfg.CRMAuthHeader,
	)
	captchaClient := recaptcha.NewClient(cfg.RecaptchaSecret)
	mailClient := sendgrid.NewClient(cfg.SendGridAPIKey, cfg.LeadNotifyFrom, cfg.LeadNotifyTo)

	// Initialize services
	leadService := services.NewLeadService(crmClient, captchaClient, mailClient, cfg, logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(recoveryHandler(cfg, logger)))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowedOrigins, cfg.PreviewOriginSuffix))

	// Initialize handlers
	handlers := api.NewHandlers(leadService, cfg, logger)

	// Register routes; the lead webhook takes Any so non-POST methods get
	// a 405 instead of gin's 404
	router.Any("/webhook/lead-submission", handlers.HandleLeadSubmission)
	router.GET("/health", handlers.HealthCheck)

	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	zapConfig := zap.NewProductionConfig()
	if debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	return logger
}

// recoveryHandler turns a handler panic into the generic error envelope,
// with details exposed only in debug deployments.
func recoveryHandler(cfg *config.Config, logger *zap.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic in handler", zap.Any("error", recovered))
		body := gin.H{"error": "Internal server error"}
		if cfg.Debug {
			body["details"] = fmt.Sprintf("%v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}
}
