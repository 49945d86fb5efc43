package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sportnest/sportnest/internal/auth"
	"github.com/sportnest/sportnest/internal/cache"
	"github.com/sportnest/sportnest/internal/config"
	"github.com/sportnest/sportnest/internal/http/handlers"
	"github.com/sportnest/sportnest/internal/http/middlewares"
	"github.com/sportnest/sportnest/internal/observability"
	"github.com/sportnest/sportnest/internal/queue/redisclient"
	"github.com/sportnest/sportnest/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter wires repositories, handlers and the middleware stack into one
// gin engine. Everything hangs off the shared pgx pool and redis client.
func NewRouter(
	cfg config.Config,
	log *slog.Logger,
	pool *pgxpool.Pool,
	rdb *redisclient.Client,
	prom *observability.Prom,
	registry *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("sportnest-api"))
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// repositories
	membersRepo := postgres.NewMembersRepo(pool)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)
	eventsRepo := postgres.NewEventsRepo(pool, prom)
	registrationsRepo := postgres.NewRegistrationsRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)
	membershipsRepo := postgres.NewMembershipsRepo(pool, prom)
	coachesRepo := postgres.NewCoachesRepo(pool, prom)
	playersRepo := postgres.NewPlayersRepo(pool, prom)
	suppliersRepo := postgres.NewSuppliersRepo(pool, prom)
	sponsorshipsRepo := postgres.NewSponsorshipsRepo(pool, prom)
	reportsRepo := postgres.NewReportsRepo(pool, prom)

	jwtManager := auth.NewManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
	)

	listCache := cache.New(5 * time.Second)

	// handlers
	authHandler := handlers.NewAuthHandler(membersRepo, membersRepo, jwtManager, refreshRepo, cfg)
	eventsHandler := handlers.NewEventsHandler(eventsRepo, listCache)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsRepo, eventsRepo, jobsRepo, prom)
	reportsHandler := handlers.NewReportsHandler(reportsRepo, rdb)
	moderationHandler := handlers.NewModerationHandler(eventsRepo, prom, func() {
		listCache.Clear()
		reportsHandler.InvalidateCache()
	})
	membershipsHandler := handlers.NewMembershipsHandler(membershipsRepo)
	coachesHandler := handlers.NewCoachesHandler(coachesRepo)
	playersHandler := handlers.NewPlayersHandler(playersRepo)
	suppliersHandler := handlers.NewSuppliersHandler(suppliersRepo)
	sponsorshipsHandler := handlers.NewSponsorshipsHandler(sponsorshipsRepo)

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// health + metrics
	pingDB := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
	pingRedis := func() error {
		if rdb == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	}

	health := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// auth, rate limited by IP
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// public surface
	registerLimiter := middlewares.NewRateLimiter(30, time.Minute)

	r.GET("/events", eventsHandler.ListApproved)
	r.GET("/events/:id", eventsHandler.Get)
	r.POST("/events/:id/register",
		registerLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		registrationsHandler.Register,
	)
	r.GET("/plans", membershipsHandler.ListPlans)

	// member surface
	memberGroup := r.Group("/")
	memberGroup.Use(authMW.RequireAuth())
	{
		memberGroup.POST("/events", eventsHandler.Submit)
		memberGroup.PUT("/events/:id", eventsHandler.Update)
		memberGroup.DELETE("/events/:id", eventsHandler.Delete)
		memberGroup.GET("/members/me/events", eventsHandler.ListMine)

		memberGroup.POST("/memberships", membershipsHandler.Choose)
		memberGroup.POST("/memberships/renew", membershipsHandler.Renew)
		memberGroup.GET("/members/me/membership", membershipsHandler.GetMine)

		memberGroup.POST("/sponsorships", sponsorshipsHandler.Apply)
	}

	// admin surface
	adminGroup := r.Group("/admin")
	adminGroup.Use(authMW.RequireAuth(), authMW.RequireRole("admin"))
	{
		adminGroup.GET("/events", moderationHandler.List)
		adminGroup.POST("/events/:id/approve", moderationHandler.Approve)
		adminGroup.POST("/events/:id/reject", moderationHandler.Reject)
		adminGroup.GET("/events/:id/registrations", registrationsHandler.ListForEvent)

		adminGroup.GET("/reports/summary", reportsHandler.SummaryJSON)
		adminGroup.GET("/reports/summary.csv", reportsHandler.SummaryCSV)

		adminGroup.POST("/coaches", coachesHandler.Create)
		adminGroup.GET("/coaches", coachesHandler.List)
		adminGroup.GET("/coaches/:id", coachesHandler.Get)
		adminGroup.PUT("/coaches/:id", coachesHandler.Update)
		adminGroup.DELETE("/coaches/:id", coachesHandler.Delete)

		adminGroup.POST("/players", playersHandler.Create)
		adminGroup.GET("/players", playersHandler.List)
		adminGroup.GET("/players/:id", playersHandler.Get)
		adminGroup.PUT("/players/:id", playersHandler.Update)
		adminGroup.DELETE("/players/:id", playersHandler.Delete)

		adminGroup.POST("/suppliers", suppliersHandler.Create)
		adminGroup.GET("/suppliers", suppliersHandler.List)
		adminGroup.PUT("/suppliers/:id", suppliersHandler.Update)
		adminGroup.DELETE("/suppliers/:id", suppliersHandler.Delete)

		adminGroup.POST("/inventory", suppliersHandler.CreateItem)
		adminGroup.GET("/inventory", suppliersHandler.ListItems)
		adminGroup.POST("/inventory/:itemId/adjust", suppliersHandler.AdjustItem)
		adminGroup.DELETE("/inventory/:itemId", suppliersHandler.DeleteItem)

		adminGroup.GET("/sponsorships", sponsorshipsHandler.List)
		adminGroup.POST("/sponsorships/:id/approve", sponsorshipsHandler.Approve)
		adminGroup.POST("/sponsorships/:id/reject", sponsorshipsHandler.Reject)
	}

	return r
}
