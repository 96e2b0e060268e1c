package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	appointmenthandler "github.com/jwalitptl/clinic-queue-api/internal/handler/appointment"
	cataloghandler "github.com/jwalitptl/clinic-queue-api/internal/handler/catalog"
	healthhandler "github.com/jwalitptl/clinic-queue-api/internal/handler/health"
	selectionhandler "github.com/jwalitptl/clinic-queue-api/internal/handler/selection"
	"github.com/jwalitptl/clinic-queue-api/internal/middleware"
)

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	appointmentH *appointmenthandler.Handler
	catalogH     *cataloghandler.Handler
	selectionH   *selectionhandler.Handler
	healthH      *healthhandler.Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	appointmentH *appointmenthandler.Handler,
	catalogH *cataloghandler.Handler,
	selectionH *selectionhandler.Handler,
	healthH *healthhandler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		appointmentH: appointmentH,
		catalogH:     catalogH,
		selectionH:   selectionH,
		healthH:      healthH,
		metrics:      initRouterMetrics(config.MetricsPrefix, prometheus.DefaultRegisterer),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: 30 * time.Second}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Patient self-service entry point stays public
	api.POST("/appointments/requests", r.appointmentH.RequestAppointment)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupAppointmentRoutes(protected)
	r.setupCatalogRoutes(protected)
	r.setupSelectionRoutes(protected)
}

func (r *Router) setupAppointmentRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.POST("", r.appointmentH.BookAppointment)
		appointments.GET("", r.appointmentH.ListAppointments)
		appointments.GET("/upcoming", r.appointmentH.ListUpcoming)
		appointments.GET("/history", r.appointmentH.ListHistory)
		appointments.GET("/live", r.appointmentH.LiveQueue)
		appointments.GET("/:id", r.appointmentH.GetAppointment)
		appointments.POST("/:id/approve", r.appointmentH.ApproveAppointment)
		appointments.POST("/:id/reject", r.appointmentH.RejectAppointment)
		appointments.POST("/:id/reschedule", r.appointmentH.RescheduleAppointment)
		appointments.POST("/:id/check-in", r.appointmentH.CheckInAppointment)
		appointments.POST("/:id/start", r.appointmentH.StartAppointment)
		appointments.POST("/:id/complete", r.appointmentH.CompleteAppointment)
		appointments.POST("/:id/cancel", r.appointmentH.CancelAppointment)
		appointments.POST("/:id/no-show", r.appointmentH.NoShowAppointment)
		appointments.POST("/:id/follow-up", r.appointmentH.FollowUpAppointment)
	}
}

func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	rg.GET("/clinics", r.catalogH.ListClinics)
	rg.POST("/clinics", r.catalogH.CreateClinic)
	rg.GET("/clinics/:clinicId/departments", r.catalogH.ListDepartments)
	rg.POST("/departments", r.catalogH.CreateDepartment)
	rg.GET("/departments/:departmentId/doctors", r.catalogH.ListDoctors)
	rg.POST("/doctors", r.catalogH.CreateDoctor)
	rg.GET("/doctors/:doctorId/shifts", r.catalogH.ListShifts)
	rg.PUT("/doctors/:doctorId/shifts", r.catalogH.ReplaceShifts)
}

func (r *Router) setupSelectionRoutes(rg *gin.RouterGroup) {
	selections := rg.Group("/selections/:session")
	{
		selections.GET("", r.selectionH.GetSelection)
		selections.PUT("/clinic", r.selectionH.SetClinic)
		selections.PUT("/department", r.selectionH.SetDepartment)
		selections.PUT("/doctor", r.selectionH.SetDoctor)
		selections.DELETE("", r.selectionH.DropSelection)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// initRouterMetrics registers the request metrics so the metrics endpoint
// actually exports what the middleware observes.
func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
