package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agendahub/agenda-api/internal/handler"
	"github.com/agendahub/agenda-api/internal/middleware"
)

// Handler is anything that mounts its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	RequestTimeout   time.Duration
	CORSOrigins      []string
	CORSMethods      []string
	CORSHeaders      []string
	MetricsPrefix    string
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        Handler
	healthH      Handler
	profileH     Handler
	customerH    Handler
	catalogH     Handler
	appointmentH Handler
	metricsH     Handler
	dashboardH   Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH, healthH, profileH, customerH, catalogH, appointmentH, metricsH, dashboardH Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	handler.RegisterTagNames()

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		healthH:      healthH,
		profileH:     profileH,
		customerH:    customerH,
		catalogH:     catalogH,
		appointmentH: appointmentH,
		metricsH:     metricsH,
		dashboardH:   dashboardH,
		metrics:      newRouterMetrics(config.MetricsPrefix),
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	cors := middleware.DefaultCORSConfig()
	if len(config.CORSOrigins) > 0 {
		cors.AllowOrigins = config.CORSOrigins
	}
	if len(config.CORSMethods) > 0 {
		cors.AllowMethods = config.CORSMethods
	}
	if len(config.CORSHeaders) > 0 {
		cors.AllowHeaders = config.CORSHeaders
	}
	engine.Use(middleware.CORS(cors))

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimitRPS,
			Burst: config.RateLimitBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	engine.Use(middleware.Cache(middleware.DefaultCacheConfig()))

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Public surface: health probes and the auth flow.
	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.profileH.RegisterRoutes(protected)
	r.customerH.RegisterRoutes(protected)
	r.catalogH.RegisterRoutes(protected)
	r.appointmentH.RegisterRoutes(protected)
	r.metricsH.RegisterRoutes(protected)
	r.dashboardH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "agenda_api"
	}
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP error responses",
			},
			[]string{"method", "path", "status"},
		),
	}
}

// metricsMiddleware records per-route counters keyed by the route template,
// not the raw path, so ids do not explode the label space.
func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		}
	}
}
