package main

import (
	"net/http"
	"os"
	"time"

	"mfaportal/api/handler"
	apiMiddleware "mfaportal/api/middleware"
	"mfaportal/api/routes"
	"mfaportal/config"
	"mfaportal/internal/repository"
	"mfaportal/internal/service"
	"mfaportal/web"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	db, err := config.Connect(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}

	tokens := &service.SessionTokenIssuer{
		Secret: cfg.SessionSecret,
		Issuer: cfg.TokenIssuer,
	}
	mfaProvider := service.NewTOTPProvider(cfg.MFAIssuer)
	hasher := service.BcryptPasswordHasher{Cost: cfg.BcryptCost}
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(
		userRepo,
		hasher,
		tokens,
		mfaProvider,
		service.AuthConfig{
			TokenTTL:   cfg.TokenTTL,
			SessionTTL: cfg.SessionTTL,
			MFAIssuer:  cfg.MFAIssuer,
			BcryptCost: cfg.BcryptCost,
		},
	)

	validate := validator.New()
	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.SecureCookies = cfg.CookieSecure

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.WithError(err).Fatal("template parsing failed")
	}

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Renderer = renderer
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Tokens: tokens}
	router := routes.NewRouter(app, authHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
