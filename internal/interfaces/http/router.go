package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/auth"
	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/application/session"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver   *identity.Resolver
	Sessions   *session.Service
	CartEngine *cart.Engine
	Merger     *cart.Merger
	AuthUC     *auth.AuthUseCase
	ProductUC  *usecase.ProductUseCase
	Log        *logger.Logger
}

// Router registra las rutas de la API. Cada grupo declara su política de
// identidad como datos (RoutePolicy); un único middleware la interpreta.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Merger, deps.Log)
	guestHandler := NewGuestHandler(deps.Sessions)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/guest", guestHandler.Create)

	// Products: lectura pública, escritura solo admin
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", RequireIdentity(deps.Resolver, identity.PolicyPublic), productHandler.List)
	products.Get("/:id", RequireIdentity(deps.Resolver, identity.PolicyPublic), productHandler.GetByID)
	products.Post("/", RequireIdentity(deps.Resolver, identity.PolicyAdmin), productHandler.Create)

	// Cart: usuarios e invitados; sin token se aprovisiona sesión de invitado
	cartGroup := api.Group("/cart")
	cartHandler := NewCartHandler(deps.CartEngine, deps.Merger)
	cartGroup.Get("/", RequireIdentity(deps.Resolver, identity.PolicyCart), cartHandler.Get)
	cartGroup.Delete("/", RequireIdentity(deps.Resolver, identity.PolicyCart), cartHandler.Clear)
	cartGroup.Post("/items", RequireIdentity(deps.Resolver, identity.PolicyCart), cartHandler.AddItem)
	cartGroup.Put("/items", RequireIdentity(deps.Resolver, identity.PolicyCart), cartHandler.UpdateItem)
	cartGroup.Delete("/items/:product_id", RequireIdentity(deps.Resolver, identity.PolicyCart), cartHandler.RemoveItem)

	// Migración explícita: requiere usuario autenticado
	cartGroup.Post("/migrate", RequireIdentity(deps.Resolver, identity.PolicyUser), cartHandler.Migrate)
}
