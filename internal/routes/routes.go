package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/offerhub/offerhub/internal/account"
	"github.com/offerhub/offerhub/internal/auth"
	"github.com/offerhub/offerhub/internal/config"
	"github.com/offerhub/offerhub/internal/media"
	"github.com/offerhub/offerhub/internal/middleware"
	"github.com/offerhub/offerhub/internal/offer"
)

// Deps aggregates shared dependencies required to wire routes. DB, Cache
// and Images may be nil in development, where in-memory stores take over.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Images media.Store
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Images == nil {
			return fmt.Errorf("image store is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(cors.New(cors.Config{AllowOrigins: d.Cfg.AllowedOrigins()}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var (
		accountRepo account.Repository
		offerRepo   offer.Repository
	)
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		offerRepo = offer.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("routes.memory_store", slog.String("reason", "no database configured"))
		accountRepo = account.NewMemoryRepository()
		offerRepo = offer.NewMemoryRepository()
	}

	images := d.Images
	if images == nil {
		d.Logger.Warn("routes.memory_images", slog.String("reason", "no image store configured"))
		images = media.NewMemoryStore()
	}
	folders := media.Folders{Root: d.Cfg.ImageRoot}

	var tokenCache auth.Cache
	if d.Cache != nil {
		tokenCache = auth.NewRedisCache(d.Cache, d.Cfg.TokenCacheTTL, d.Logger)
	}
	gate := auth.NewGate(accountRepo, tokenCache, d.Logger)

	accountHandler := account.NewHandler(account.NewService(accountRepo, images, folders, d.Logger))
	offerHandler := offer.NewHandler(
		offer.NewCatalog(offerRepo),
		offer.NewMutator(offerRepo, images, folders, d.Logger),
	)

	RegisterUserRoutes(app, accountHandler)
	RegisterOfferRoutes(app, offerHandler, middleware.Bearer(gate))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "Page not found"})
	})
	return nil
}
