package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/tienda-api/internal/application/auth"
	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/application/session"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/jwt"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		cartRepo    repository.CartRepository
		sessionRepo repository.GuestSessionRepository
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
	)
	if cfg.Store.Driver == "postgres" {
		pool, perr := postgres.NewPool(ctx, cfg.DB)
		if perr != nil {
			log.Fatal().Err(perr).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		cartRepo = postgres.NewCartRepository(pool)
		sessionRepo = postgres.NewGuestSessionRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
		productRepo = postgres.NewProductRepository(pool)
	} else {
		cartRepo = memory.NewCartRepository()
		sessionRepo = memory.NewGuestSessionRepository()
		userRepo = memory.NewUserRepository()
		productRepo = memory.NewProductRepository()
	}

	sessionSvc := session.NewService(sessionRepo, cfg.Session, log)
	productUC := usecase.NewProductUseCase(productRepo)
	engine := cart.NewEngine(cartRepo, productUC, cfg.Cart, log)
	merger := cart.NewMerger(engine, sessionSvc, log)
	resolver := identity.NewResolver(jwt.NewValidator(cfg.JWT.Secret), sessionSvc)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	janitorCtx, janitorCancel := context.WithCancel(ctx)
	janitor := session.NewJanitor(sessionRepo, cartRepo, cfg.Janitor, log)
	janitor.Start(janitorCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tienda API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver:   resolver,
		Sessions:   sessionSvc,
		CartEngine: engine,
		Merger:     merger,
		AuthUC:     authUC,
		ProductUC:  productUC,
		Log:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	janitorCancel()
	janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
