package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shebloom/shebloom/internal/account"
	"github.com/shebloom/shebloom/internal/booking"
	"github.com/shebloom/shebloom/internal/chat"
	"github.com/shebloom/shebloom/internal/community"
	"github.com/shebloom/shebloom/internal/config"
	"github.com/shebloom/shebloom/internal/content"
	"github.com/shebloom/shebloom/internal/journal"
	"github.com/shebloom/shebloom/internal/middleware"
	"github.com/shebloom/shebloom/internal/mood"
	"github.com/shebloom/shebloom/internal/notification"
	"github.com/shebloom/shebloom/internal/payment"
	"github.com/shebloom/shebloom/internal/profile"
	"github.com/shebloom/shebloom/internal/sos"
	"github.com/shebloom/shebloom/internal/wallet"
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

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Repositories: Postgres when configured, in-memory in dev.
	var (
		accountRepo   account.Repository
		profileRepo   profile.Repository
		walletRepo    wallet.Repository
		bookingRepo   booking.Repository
		moodRepo      mood.Repository
		journalRepo   journal.Repository
		communityRepo community.Repository
		contentRepo   content.Repository
		sosRepo       sos.Repository
		chatRepo      chat.Repository
	)
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		profileRepo = profile.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		bookingRepo = booking.NewPostgresRepository(d.DB)
		moodRepo = mood.NewPostgresRepository(d.DB)
		journalRepo = journal.NewPostgresRepository(d.DB)
		communityRepo = community.NewPostgresRepository(d.DB)
		contentRepo = content.NewPostgresRepository(d.DB)
		sosRepo = sos.NewPostgresRepository(d.DB)
		chatRepo = chat.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
		profileRepo = profile.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		bookingRepo = booking.NewMemoryRepository()
		moodRepo = mood.NewMemoryRepository()
		journalRepo = journal.NewMemoryRepository()
		communityRepo = community.NewMemoryRepository()
		contentRepo = content.NewMemoryRepository()
		sosRepo = sos.NewMemoryRepository()
		chatRepo = chat.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	processor := payment.NewSimulatedProcessor(d.Cfg.PaymentDelay, d.Cfg.PaymentFailureRate)

	accountSvc := account.NewService(d.Cfg, accountRepo)
	walletSvc := wallet.NewService(walletRepo, processor, notifier, d.Logger)
	bookingSvc := booking.NewService(bookingRepo, walletSvc, notifier, d.Logger)
	moodSvc := mood.NewService(moodRepo)
	communitySvc := community.NewService(communityRepo)
	sosSvc := sos.NewService(sosRepo)
	gateway := chat.NewGatewayClient(d.Cfg.AIGatewayURL, d.Cfg.AIGatewayKey, 30*time.Second)
	chatSvc := chat.NewService(chatRepo, gateway, moodSvc, d.Cfg.AIModel, d.Logger)

	accountHandler := account.NewHandler(accountSvc)
	profileHandler := profile.NewHandler(profileRepo)
	walletHandler := wallet.NewHandler(walletSvc)
	bookingHandler := booking.NewHandler(bookingSvc)
	moodHandler := mood.NewHandler(moodSvc)
	journalHandler := journal.NewHandler(journalRepo)
	communityHandler := community.NewHandler(communitySvc)
	contentHandler := content.NewHandler(contentRepo)
	sosHandler := sos.NewHandler(sosSvc)
	chatHandler := chat.NewHandler(chatSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, accountHandler, middleware.RateLimit(d.Cache, "login", 5, time.Minute, clientIP))

	jwtmw := middleware.JWTAuth(accountSvc, accountRepo, d.Cfg.JWTSecret)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	protected.Post("/auth/logout", accountHandler.Logout)
	protected.Get("/profile", profileHandler.Get)
	protected.Patch("/profile", profileHandler.Update)

	RegisterWalletRoutes(protected, walletHandler)
	RegisterBookingRoutes(protected, bookingHandler)
	RegisterWellnessRoutes(protected, moodHandler, journalHandler)
	RegisterCommunityRoutes(protected, communityHandler, contentHandler)
	RegisterSOSRoutes(protected, sosHandler)
	RegisterChatRoutes(protected, chatHandler, middleware.RateLimit(d.Cache, "chat", 20, time.Minute, middleware.UserOrIP))

	return nil
}

func clientIP(c *fiber.Ctx) string {
	return c.IP()
}
