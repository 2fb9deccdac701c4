package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/soulscribe/soulscribe/internal/auth"
	"github.com/soulscribe/soulscribe/internal/config"
	"github.com/soulscribe/soulscribe/internal/entries"
	"github.com/soulscribe/soulscribe/internal/identity"
	"github.com/soulscribe/soulscribe/internal/middleware"
	"github.com/soulscribe/soulscribe/internal/notification"
	"github.com/soulscribe/soulscribe/internal/profile"
	"github.com/soulscribe/soulscribe/internal/secretlock"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: Postgres in production, memory fallback in dev.
	var identityRepo identity.Repository
	var entriesRepo entries.Repository
	var profileRepo profile.Repository
	var lockRepo secretlock.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		entriesRepo = entries.NewPostgresRepository(d.DB)
		profileRepo = profile.NewPostgresRepository(d.DB)
		lockRepo = secretlock.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		entriesRepo = entries.NewMemoryRepository()
		profileRepo = profile.NewMemoryRepository()
		lockRepo = secretlock.NewMemoryRepository()
	}

	// Services and handlers
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	authHandler := auth.NewHandler(identitySvc, authSvc)
	entriesSvc := entries.NewService(entriesRepo)
	entriesHandler := entries.NewHandler(entriesSvc)
	profileHandler := profile.NewHandler(profileRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	lockSvc := secretlock.NewService(lockRepo, entriesSvc, notifier, d.Cfg.LockSecret,
		d.Cfg.LockMaxAttempts, d.Cfg.LockoutPeriod, d.Cfg.UnlockTTL)
	lockHandler := secretlock.NewHandler(lockSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identitySvc, profileRepo, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	api.Post("/auth/login", rateLimiter, authHandler.Login)
	api.Post("/auth/refresh", authHandler.Refresh)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, identityRepo)
	protected := api.Group("", jwtmw)
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		user, err := identityRepo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"username":   user.Username,
			"created_at": user.CreatedAt,
			"last_login": user.LastLogin,
		})
	})

	protected.Get("/profile", profileHandler.Get)

	// Every lock attempt leaves a structured audit record.
	audited := protected.Group("", middleware.Audit(d.Logger))
	RegisterSecretLockRoutes(audited, lockHandler)

	// Mutations of journal content go through the idempotency layer. The
	// secret lock routes stay outside it: retried PIN submits must count.
	mutating := protected
	if d.Cache != nil {
		mutating = protected.Group("", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	mutating.Put("/profile", profileHandler.Update)
	RegisterEntryRoutes(protected, mutating, entriesHandler)

	return nil
}
