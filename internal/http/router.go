package http

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/corvid89/taskhub/internal/auth"
	"github.com/corvid89/taskhub/internal/cache"
	"github.com/corvid89/taskhub/internal/config"
	"github.com/corvid89/taskhub/internal/http/handlers"
	"github.com/corvid89/taskhub/internal/http/middlewares"
	"github.com/corvid89/taskhub/internal/observability"
	"github.com/corvid89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Deps is everything the route tree needs. NewRouter fills it from postgres
// and redis; tests fill it with memory repos.
type Deps struct {
	Users   handlers.UsersRepository
	Tasks   handlers.TasksRepository
	Cache   cache.TaskLists
	Backend string
	JWT     *auth.Manager
	Ping    func() error

	// NewRouterWithDeps creates a private pair when these are unset, so
	// several routers can coexist in one process (tests).
	Registry *prometheus.Registry
	Prom     *observability.Prom
}

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	deps := Deps{
		Users:    postgres.NewUsersRepo(pool, prom),
		Tasks:    postgres.NewTasksRepo(pool, prom),
		JWT:      auth.NewManager(cfg.JWTSecret, cfg.JWTTTL()),
		Ping:     ping,
		Registry: reg,
		Prom:     prom,
	}

	deps.Cache, deps.Backend = newListCache(log, cfg)

	return NewRouterWithDeps(log, cfg, deps)
}

func NewRouterWithDeps(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	reg, prom := deps.Registry, deps.Prom
	if reg == nil {
		reg = prometheus.NewRegistry()
		prom = observability.NewProm(reg)
	}

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("taskhub-api"))
	r.Use(prom.GinHandleMiddleware())

	// ops surface
	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT)
	tasksHandler := handlers.NewTasksHandlerWithCache(deps.Tasks, deps.Cache, deps.Backend).WithMetrics(prom)

	authMW := middlewares.NewAuthMiddleware(deps.JWT, deps.Users)

	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/profile", authMW.RequireAuth(), authHandler.Profile)

	tasks := api.Group("/tasks", authMW.RequireAuth())
	tasks.GET("", tasksHandler.ListTasks)
	tasks.POST("", tasksHandler.CreateTask)
	tasks.PUT("/:id", tasksHandler.UpdateTask)
	tasks.DELETE("/:id", tasksHandler.DeleteTask)
	tasks.PATCH("/:id/toggle", tasksHandler.ToggleTask)

	return r
}

// newListCache prefers redis when configured and reachable, otherwise the
// in-process cache.
func newListCache(log *slog.Logger, cfg config.Config) (cache.TaskLists, string) {
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable, falling back to in-memory cache", "err", err)
			_ = rc.Close()
		} else {
			return rc, "redis"
		}
	}

	return cache.NewMemory(cfg.CacheTTL), "memory"
}
