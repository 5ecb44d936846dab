package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// CartHandler expone el carrito de la identidad resuelta.
type CartHandler struct {
	engine *cart.Engine
	merger *cart.Merger
}

// NewCartHandler construye el handler de carrito.
func NewCartHandler(engine *cart.Engine, merger *cart.Merger) *CartHandler {
	return &CartHandler{engine: engine, merger: merger}
}

// Get godoc
// @Summary      Obtener el carrito
// @Tags         cart
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.engine.GetCart(c.Context(), GetIdentity(c))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(dto.ToCartResponse(out))
}

// AddItem godoc
// @Summary      Agregar una línea al carrito (cantidades se suman)
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartItemRequest  true  "product_id, quantity, catalog_id opcional"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.AddItem(c.Context(), GetIdentity(c), in.ProductID, in.CatalogID, in.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(dto.ToCartResponse(out))
}

// UpdateItem godoc
// @Summary      Fijar la cantidad absoluta de una línea (0 la elimina)
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartItemRequest  true  "product_id, quantity, catalog_id opcional"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/items [put]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.UpdateItem(c.Context(), GetIdentity(c), in.ProductID, in.CatalogID, in.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(dto.ToCartResponse(out))
}

// RemoveItem godoc
// @Summary      Eliminar una línea del carrito (no-op si no existe)
// @Tags         cart
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        catalog_id  query  string  false  "catálogo de la línea"
// @Success      200  {object}  dto.CartResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.engine.RemoveItem(c.Context(), GetIdentity(c), c.Params("product_id"), c.Query("catalog_id"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(dto.ToCartResponse(out))
}

// Clear godoc
// @Summary      Vaciar el carrito
// @Tags         cart
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	out, err := h.engine.Clear(c.Context(), GetIdentity(c))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(dto.ToCartResponse(out))
}

// Migrate godoc
// @Summary      Migrar el carrito de una sesión de invitado al usuario autenticado
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MigrateRequest  true  "guest_token"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/migrate [post]
func (h *CartHandler) Migrate(c *fiber.Ctx) error {
	var in dto.MigrateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id := GetIdentity(c)
	out, err := h.merger.Migrate(c.Context(), in.GuestToken, id.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		// La migración quedó revertida: el cliente puede reintentar completa.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MERGE_FAILED", Message: err.Error()})
	}
	return c.JSON(dto.ToCartResponse(out))
}

// cartError mapea errores del motor a respuestas HTTP.
func cartError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoIdentity):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "NO_IDENTITY", Message: "una identidad anónima no tiene carrito"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		// Transitorio: el cliente puede reenviar la operación.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el carrito cambió de forma concurrente, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
