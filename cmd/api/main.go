package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agendahub/agenda-api/config"
	"github.com/agendahub/agenda-api/internal/cache"
	appointmentHandler "github.com/agendahub/agenda-api/internal/handler/appointment"
	authHandler "github.com/agendahub/agenda-api/internal/handler/auth"
	catalogHandler "github.com/agendahub/agenda-api/internal/handler/catalog"
	customerHandler "github.com/agendahub/agenda-api/internal/handler/customer"
	dashboardHandler "github.com/agendahub/agenda-api/internal/handler/dashboard"
	healthHandler "github.com/agendahub/agenda-api/internal/handler/health"
	metricsHandler "github.com/agendahub/agenda-api/internal/handler/metrics"
	userHandler "github.com/agendahub/agenda-api/internal/handler/user"
	"github.com/agendahub/agenda-api/internal/middleware"
	"github.com/agendahub/agenda-api/internal/router"
	appointmentService "github.com/agendahub/agenda-api/internal/service/appointment"
	authService "github.com/agendahub/agenda-api/internal/service/auth"
	catalogService "github.com/agendahub/agenda-api/internal/service/catalog"
	customerService "github.com/agendahub/agenda-api/internal/service/customer"
	dashboardService "github.com/agendahub/agenda-api/internal/service/dashboard"
	exportService "github.com/agendahub/agenda-api/internal/service/export"
	metricsService "github.com/agendahub/agenda-api/internal/service/metrics"
	userService "github.com/agendahub/agenda-api/internal/service/user"
	"github.com/agendahub/agenda-api/internal/storage"
	pkgauth "github.com/agendahub/agenda-api/pkg/auth"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/messaging"
	kafkabroker "github.com/agendahub/agenda-api/pkg/messaging/kafka"
	redisbroker "github.com/agendahub/agenda-api/pkg/messaging/redis"
	"github.com/agendahub/agenda-api/pkg/metrics"
	"github.com/agendahub/agenda-api/pkg/security"
)

// demoSigningKey signs tokens when no secret is configured. Only usable in
// demo mode; connected modes refuse to start without JWT_SECRET.
const demoSigningKey = "agenda-demo-signing-key-do-not-deploy"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level := logger.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)
	appLog := logger.NewLogger(&logger.Config{Level: level})

	m := metrics.NewMetrics("agenda", "api")

	store, err := storage.Open(context.Background(), cfg, appLog, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	broker := openBroker(cfg)
	defer broker.Close()

	secret := cfg.JWT.Secret
	if secret == "" {
		if store.Mode != config.ModeDemo {
			log.Fatal().Msg("JWT_SECRET must be set outside demo mode")
		}
		log.Warn().Msg("JWT_SECRET not set, using the demo signing key")
		secret = demoSigningKey
	}
	jwtSvc := pkgauth.NewJWTService(secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry, cfg.JWT.Issuer)
	hasher := security.NewBcryptHasher(0)

	appCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval, m)

	repos := store.Repos
	authSvc := authService.NewService(repos.User, repos.Profile, jwtSvc, hasher, store.Mode == config.ModeDemo)
	userSvc := userService.NewService(repos.Profile)
	customerSvc := customerService.NewService(repos.Customer, appCache)
	catalogSvc := catalogService.NewService(repos.Service, appCache)
	appointmentSvc := appointmentService.NewService(
		repos.Appointment, repos.Customer, repos.Service, broker, appCache, appLog, m)
	metricsSvc := metricsService.NewService(repos.Appointment, repos.Metric, appCache)
	dashboardSvc := dashboardService.NewService(appointmentSvc, customerSvc, catalogSvc, metricsSvc)
	exportSvc := exportService.NewService(customerSvc)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(store),
		userHandler.NewHandler(userSvc),
		customerHandler.NewHandler(customerSvc, exportSvc),
		catalogHandler.NewHandler(catalogSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		metricsHandler.NewHandler(metricsSvc),
		dashboardHandler.NewHandler(dashboardSvc),
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CORSOrigins:      cfg.Security.AllowedOrigins,
			CORSMethods:      cfg.Security.AllowedMethods,
			CORSHeaders:      cfg.Security.AllowedHeaders,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLog.Info("server listening", "addr", srv.Addr, "mode", string(store.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// openBroker picks the event transport: kafka when the driver says so, redis
// when a URL is present, otherwise a no-op sink.
func openBroker(cfg *config.Config) messaging.Broker {
	zl := log.With().Str("component", "messaging").Logger()

	switch {
	case cfg.Messaging.Driver == "kafka" && cfg.Messaging.KafkaBrokers != "":
		broker, err := kafkabroker.NewKafkaBroker(kafkabroker.Config{
			Brokers: cfg.Messaging.KafkaBrokers,
			GroupID: cfg.Messaging.KafkaGroupID,
		}, &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Kafka")
		}
		return broker

	case cfg.Redis.URL != "":
		broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		return broker

	default:
		log.Info().Msg("no message broker configured, appointment events are dropped")
		return messaging.NewNoopBroker()
	}
}
