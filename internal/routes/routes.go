package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BruksfildServices01/barber-turnos/internal/audit"
	"github.com/BruksfildServices01/barber-turnos/internal/auth"
	"github.com/BruksfildServices01/barber-turnos/internal/calendar"
	"github.com/BruksfildServices01/barber-turnos/internal/config"
	"github.com/BruksfildServices01/barber-turnos/internal/handlers"
	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
	"github.com/BruksfildServices01/barber-turnos/internal/middleware"
	"github.com/BruksfildServices01/barber-turnos/internal/storage"
	"github.com/BruksfildServices01/barber-turnos/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-turnos/internal/usecase/appointment"
)

// Deps are the process-lifetime singletons the routes are wired to.
type Deps struct {
	Config  *config.Config
	Backend storage.Backend
	Audit   *audit.Dispatcher
	Logger  *slog.Logger
	Limiter *middleware.RateLimiter

	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer

	// Aggregator defaults to one on the configured shop time zone.
	Aggregator *calendar.Aggregator
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loc, exact := timezone.Location(d.Config.ShopTimezone)
	if !exact {
		logger.Warn("shop timezone unavailable, using fallback",
			"requested", d.Config.ShopTimezone,
			"using", loc.String(),
		)
	}

	aggregator := d.Aggregator
	if aggregator == nil {
		aggregator = calendar.NewAggregator(loc)
	}

	gateway := auth.NewGateway(d.Backend, d.Backend, d.Config.JWTSecret)

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.Recovery(),
		middleware.AccessLog(logger),
		middleware.Metrics(d.Metrics),
		middleware.CORSMiddleware(d.Config.CORSAllowedOrigin),
		middleware.Identity(gateway),
	)

	// ======================================================
	// USE CASES
	// ======================================================
	createPublicUC := ucAppointment.NewCreatePublicAppointment(d.Backend, d.Audit, d.Metrics, loc)
	createMineUC := ucAppointment.NewCreateUserAppointment(d.Backend, d.Audit, d.Metrics, loc)
	getMineUC := ucAppointment.NewGetMyAppointment(d.Backend)
	decideUC := ucAppointment.NewDecideAppointment(d.Backend, d.Audit, d.Metrics)
	listUC := ucAppointment.NewListAppointments(d.Backend)
	calendarUC := ucAppointment.NewWeeklyCalendar(d.Backend, aggregator)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(createPublicUC, listUC)
	meHandler := handlers.NewMeHandler(getMineUC, createMineUC)
	adminHandler := handlers.NewAdminHandler(listUC, decideUC, calendarUC)
	authHandler := handlers.NewAuthHandler(
		gateway,
		d.Audit,
		d.Metrics,
		d.Config.SessionTTL,
		d.Config.CookieSecure,
	)

	limited := func(c *gin.Context) { c.Next() }
	if d.Limiter != nil {
		limited = d.Limiter.Middleware()
	}

	// ======================================================
	// ROUTES
	// ======================================================
	r.GET("/health", handlers.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)

		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/appointments", appointmentHandler.List)
		api.POST("/appointments", limited, appointmentHandler.Create)

		// ------------------------------
		// AUTH (general lane)
		// ------------------------------
		api.POST("/auth/login", limited, authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)

		// ------------------------------
		// ME
		// ------------------------------
		me := api.Group("/me")
		me.Use(middleware.RequireUser())
		{
			me.GET("/appointment", meHandler.GetAppointment)
			me.POST("/appointment", meHandler.CreateAppointment)
		}

		// ------------------------------
		// ADMIN
		// ------------------------------
		api.POST("/admin/login", limited, authHandler.AdminLogin)
		api.POST("/admin/logout", authHandler.AdminLogout)

		// predates user accounts: the legacy cookie is honoured here
		legacyAdmin := api.Group("/admin")
		legacyAdmin.Use(middleware.RequireAdmin(true))
		{
			legacyAdmin.GET("/appointments", adminHandler.List)
			legacyAdmin.POST("/appointments/:id/accept", adminHandler.Accept)
			legacyAdmin.POST("/appointments/:id/reject", adminHandler.Reject)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin(false))
		{
			admin.GET("/calendar", adminHandler.Calendar)
		}
	}
}
