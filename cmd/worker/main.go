package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agendahub/agenda-api/config"
	"github.com/agendahub/agenda-api/internal/cache"
	"github.com/agendahub/agenda-api/internal/email"
	metricsService "github.com/agendahub/agenda-api/internal/service/metrics"
	"github.com/agendahub/agenda-api/internal/storage"
	"github.com/agendahub/agenda-api/internal/worker"
	"github.com/agendahub/agenda-api/pkg/logger"
	"github.com/agendahub/agenda-api/pkg/messaging"
	kafkabroker "github.com/agendahub/agenda-api/pkg/messaging/kafka"
	redisbroker "github.com/agendahub/agenda-api/pkg/messaging/redis"
	"github.com/agendahub/agenda-api/pkg/metrics"
)

// workerConfig is read straight from the environment. The worker shares the
// storage env names with the API so one deployment manifest covers both.
type workerConfig struct {
	DataDir        string `envconfig:"DATA_DIR" default:"./data"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	BackendURL     string `envconfig:"BACKEND_URL"`
	BackendAnonKey string `envconfig:"BACKEND_ANON_KEY"`

	RedisURL     string `envconfig:"REDIS_URL"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaGroupID string `envconfig:"KAFKA_GROUP_ID" default:"agenda-worker"`

	RollupSchedule string `envconfig:"ROLLUP_SCHEDULE" default:"15 0 * * *"`
	AgendaSchedule string `envconfig:"AGENDA_SCHEDULE" default:"0 7 * * *"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	DemoEmail    string `envconfig:"DEMO_EMAIL" default:"demo@agendahub.app"`
	DemoPassword string `envconfig:"DEMO_PASSWORD" default:"demo1234"`

	HealthPort int    `envconfig:"HEALTH_PORT" default:"8081"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	_ = godotenv.Load()

	var wc workerConfig
	if err := envconfig.Process("", &wc); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	level := logger.ParseLevel(wc.LogLevel)
	zerolog.SetGlobalLevel(level)
	appLog := logger.NewLogger(&logger.Config{Level: level})

	m := metrics.NewMetrics("agenda", "worker")

	cfg := &config.Config{
		Database: config.DatabaseConfig{DSN: wc.DatabaseURL},
		Backend:  config.BackendConfig{URL: wc.BackendURL, AnonKey: wc.BackendAnonKey},
		Storage:  config.StorageConfig{DataDir: wc.DataDir},
		Demo:     config.DemoConfig{Email: wc.DemoEmail, Password: wc.DemoPassword},
	}

	store, err := storage.Open(context.Background(), cfg, appLog, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	broker := openBroker(&wc)
	defer broker.Close()

	appCache := cache.New(5*time.Minute, 10*time.Minute, m)
	metricsSvc := metricsService.NewService(store.Repos.Appointment, store.Repos.Metric, appCache)
	metricsWorker := worker.NewMetricsWorker(metricsSvc, store.Repos.User, broker, appLog, m, wc.RollupSchedule)

	var agendaWorker *worker.AgendaWorker
	smtp := config.SMTPConfig{
		Host:     wc.SMTPHost,
		Port:     wc.SMTPPort,
		Username: wc.SMTPUsername,
		Password: wc.SMTPPassword,
		From:     wc.SMTPFrom,
	}
	if email.Configured(smtp) {
		agendaWorker = worker.NewAgendaWorker(
			store.Repos.User, store.Repos.Appointment, store.Repos.Customer,
			email.NewSMTPService(smtp), appLog, m, wc.AgendaSchedule)
	} else {
		log.Info().Msg("SMTP not configured, agenda mail disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down worker...")
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return metricsWorker.Start(ctx) })
	if agendaWorker != nil {
		g.Go(func() error { return agendaWorker.Start(ctx) })
	}
	runHealthServer(ctx, g, store, wc.HealthPort)

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("worker exited with error")
	}
	log.Info().Msg("worker exited properly")
}

// runHealthServer exposes liveness, readiness and Prometheus metrics on a
// side port, mirroring the API's health group.
func runHealthServer(ctx context.Context, g *errgroup.Group, store *storage.Storage, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/health/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func openBroker(wc *workerConfig) messaging.Broker {
	zl := log.With().Str("component", "messaging").Logger()

	switch {
	case wc.KafkaBrokers != "":
		broker, err := kafkabroker.NewKafkaBroker(kafkabroker.Config{
			Brokers: wc.KafkaBrokers,
			GroupID: wc.KafkaGroupID,
		}, &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Kafka")
		}
		return broker

	case wc.RedisURL != "":
		broker, err := redisbroker.NewRedisBroker(redisbroker.Config{URL: wc.RedisURL}, &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		return broker

	default:
		log.Info().Msg("no message broker configured, running scheduled rollups only")
		return messaging.NewNoopBroker()
	}
}
