package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/internal/cache"
	"github.com/explorepe/explorepe-api/internal/database/postgres"
	"github.com/explorepe/explorepe-api/internal/handlers"
	"github.com/explorepe/explorepe-api/internal/middleware"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/explorepe/explorepe-api/pkg/db"
	"github.com/explorepe/explorepe-api/pkg/geocoding"
	"github.com/explorepe/explorepe-api/pkg/httpclient"
	"github.com/explorepe/explorepe-api/pkg/jwt"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/mailer"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/profiling"
	"github.com/explorepe/explorepe-api/pkg/recaptcha"
	"github.com/explorepe/explorepe-api/pkg/storage"
	"github.com/explorepe/explorepe-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	jsonBodyLimit  = 100 * 1024
	imageBodyLimit = 6 * 1024 * 1024
)

type routeHandlers struct {
	auth      *handlers.AuthHandler
	directory *handlers.DirectoryHandler
	profile   *handlers.ProfileHandler
	review    *handlers.ReviewHandler
	admin     *handlers.AdminHandler
}

type rateLimiters struct {
	general *middleware.RateLimiter
	auth    *middleware.RateLimiter
	profile *middleware.RateLimiter
	review  *middleware.RateLimiter
}

// registerAuthRoutes registers registration, login and account recovery
func registerAuthRoutes(v1 *gin.RouterGroup, h routeHandlers, limits rateLimiters, tokenManager *jwt.TokenManager) {
	auth := v1.Group("/auth")
	auth.POST("/register", limits.auth.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.auth.Register)
	auth.POST("/login", limits.auth.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.auth.Login)
	auth.POST("/logout", h.auth.Logout)
	auth.GET("/session", middleware.OptionalSessionMiddleware(tokenManager), h.auth.GetSession)
	auth.POST("/verify", limits.auth.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.auth.VerifyEmail)
	auth.POST("/forgot-password", limits.auth.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.auth.ForgotPassword)
	auth.POST("/reset-password", limits.auth.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.auth.ResetPassword)
}

// registerDirectoryRoutes registers the public guide and explorer pages
func registerDirectoryRoutes(v1 *gin.RouterGroup, h routeHandlers, limits rateLimiters, tokenManager *jwt.TokenManager) {
	v1.GET("/guides", limits.general.Middleware(), h.directory.ListGuides)
	v1.GET("/guides/:slug", limits.general.Middleware(), h.directory.GetGuide)
	v1.GET("/guides/:slug/reviews", limits.general.Middleware(), h.directory.GetGuideReviews)
	v1.GET("/explorers/:slug", limits.general.Middleware(), h.directory.GetExplorer)

	// Anonymous submissions reach the service so it can answer with the proper message
	v1.POST("/reviews",
		limits.review.Middleware(),
		middleware.BodySizeLimitMiddleware(jsonBodyLimit),
		middleware.OptionalSessionMiddleware(tokenManager),
		h.review.SubmitReview,
	)
}

// registerAccountRoutes registers self-service profile editing and moderation
func registerAccountRoutes(v1 *gin.RouterGroup, cfg *config.Config, h routeHandlers, limits rateLimiters, tokenManager *jwt.TokenManager) {
	session := middleware.SessionMiddleware(tokenManager, cfg.Session.CookieDomain, cfg.Session.CookieSecure)

	me := v1.Group("/me")
	me.Use(session)
	me.GET("", h.profile.GetProfile)
	me.PUT("", limits.profile.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.profile.UpdateProfile)
	me.POST("/images", limits.profile.Middleware(), middleware.BodySizeLimitMiddleware(imageBodyLimit), h.profile.UploadImage)
	me.DELETE("/images", limits.profile.Middleware(), h.profile.RemoveImage)
	me.PUT("/images/caption", limits.profile.Middleware(), middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.profile.UpdateCaption)

	admin := v1.Group("/admin")
	admin.Use(session, middleware.RequireAdmin())
	admin.GET("/profiles", h.admin.ListProfiles)
	admin.POST("/profiles/:id/toggle-active", h.admin.ToggleActive)
	admin.DELETE("/profiles/:id", h.admin.DeleteProfile)
	admin.POST("/slugs/backfill", h.admin.BackfillSlugs)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Explore.pe API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.ServiceInfo{
		Name:        cfg.Observability.ServiceName,
		Namespace:   cfg.Observability.ServiceNamespace,
		Version:     cfg.Observability.ServiceVersion,
		InstanceID:  cfg.Observability.ServiceInstanceID,
		Environment: cfg.Server.AppEnv,
	}, cfg.Observability.ExporterEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	// Background work (rate limiter cleanup) stops with this context
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	// Database migrations run separately via cmd/migrate
	pool, err := db.NewPool(appCtx, db.PoolConfig{
		URL:                cfg.Database.URL,
		MaxConns:           cfg.Database.MaxConns,
		MinConns:           cfg.Database.MinConns,
		ApplicationName:    cfg.Observability.ServiceName,
		StatementTimeoutMs: cfg.Database.StatementTimeoutMs,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	store := postgres.NewClient(pool)
	defer store.Close()

	// The directory cache is filled before the server is marked healthy
	directoryCache := cache.NewDirectoryCache(func(ctx context.Context) ([]*models.Profile, error) {
		return store.ListActiveProfiles(ctx, models.UserTypeGuide)
	}, cfg.Cache.DirectoryTTLSeconds)
	if err := directoryCache.Initialize(appCtx); err != nil {
		logger.Fatal("Failed to initialize directory cache", zap.Error(err))
	}

	profileRepo := repository.NewProfileRepository(store, directoryCache)
	reviewRepo := repository.NewReviewRepository(store, directoryCache)
	slugResolver := services.NewSlugResolver(profileRepo, cfg.Profiles.SlugMaxAttempts)

	// External clients
	httpClient := httpclient.NewStandardClient()

	var imageStorage services.ImageStorage
	if cfg.Storage.Enabled() {
		storageClient, storageErr := storage.NewStorageClient(storage.Config{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if storageErr != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(storageErr))
		}
		imageStorage = storageClient
	} else {
		logger.Warn("Object storage not configured, image uploads are disabled")
	}

	geocoder := geocoding.NewClient(geocoding.Config{
		APIKey:  cfg.Geocoding.APIKey,
		BaseURL: cfg.Geocoding.BaseURL,
		Region:  cfg.Geocoding.Region,
	}, httpClient)
	captcha := recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, httpClient)
	sender := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})

	// Initialize services
	registrationService := services.NewRegistrationService(profileRepo, slugResolver, geocoder, captcha, sender, cfg, httpClient)
	authService := services.NewAuthService(profileRepo, sender, cfg)
	profileService := services.NewProfileService(profileRepo, slugResolver, geocoder, imageStorage, cfg)
	directoryService := services.NewDirectoryService(profileRepo, reviewRepo)
	reviewService := services.NewReviewService(reviewRepo, profileRepo, cfg, httpClient)
	adminService := services.NewAdminService(profileRepo, imageStorage, services.NewSlugBackfiller(profileRepo, slugResolver))

	h := routeHandlers{
		auth:      handlers.NewAuthHandler(registrationService, authService),
		directory: handlers.NewDirectoryHandler(directoryService, reviewService),
		profile:   handlers.NewProfileHandler(profileService),
		review:    handlers.NewReviewHandler(reviewService),
		admin:     handlers.NewAdminHandler(adminService),
	}
	healthHandler := handlers.NewHealthHandler(store, directoryCache.IsReady)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register request validators", zap.Error(err))
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.Session.CookieSecure))

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // session cookie
		MaxAge:           12 * time.Hour,
	}))

	limits := rateLimiters{
		general: middleware.NewRateLimiter(appCtx, 100, 200),
		// 5 req/min per IP, burst of 5
		auth: middleware.NewRateLimiter(appCtx, 5.0/60, 5).
			WithMessage("Demasiados intentos. Inténtalo de nuevo en unos minutos."),
		profile: middleware.NewRateLimiter(appCtx, 10, 20),
		review: middleware.NewRateLimiter(appCtx, 1, 5).
			WithMessage("Demasiadas reseñas en poco tiempo. Inténtalo más tarde."),
	}

	api := router.Group("/api")
	api.GET("/healthcheck", limits.general.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", limits.general.Middleware(), gin.WrapH(promhttp.Handler()))

	tokenManager := authService.GetTokenManager()
	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, h, limits, tokenManager)
	registerDirectoryRoutes(v1, h, limits, tokenManager)
	registerAccountRoutes(v1, cfg, h, limits, tokenManager)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelApp()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
