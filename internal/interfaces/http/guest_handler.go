package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/session"
)

// GuestHandler emite sesiones de invitado explícitamente, para clientes que
// quieren un token antes de la primera operación de carrito.
type GuestHandler struct {
	sessions *session.Service
}

// NewGuestHandler construye el handler de sesiones de invitado.
func NewGuestHandler(sessions *session.Service) *GuestHandler {
	return &GuestHandler{sessions: sessions}
}

// Create godoc
// @Summary      Emitir una sesión de invitado
// @Tags         auth
// @Produce      json
// @Success      201  {object}  dto.GuestSessionResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/auth/guest [post]
func (h *GuestHandler) Create(c *fiber.Ctx) error {
	s, err := h.sessions.Create(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.GuestSessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	})
}
