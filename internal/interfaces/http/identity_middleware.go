package http

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// LocalIdentity clave de c.Locals donde el middleware deja la identidad resuelta.
const LocalIdentity = "identity"

// GuestTokenHeader cabecera de respuesta con el token de invitado vigente,
// para que un cliente recién aprovisionado pueda conservarlo.
const GuestTokenHeader = "X-Guest-Token"

// fiberRequest adapta *fiber.Ctx a identity.RequestValues. El body JSON se
// decodifica una sola vez y solo si alguna ubicación lo pide.
type fiberRequest struct {
	c          *fiber.Ctx
	body       map[string]any
	bodyParsed bool
}

func (r *fiberRequest) Header(name string) string { return r.c.Get(name) }
func (r *fiberRequest) Query(name string) string  { return r.c.Query(name) }

func (r *fiberRequest) BodyField(name string) string {
	if !r.bodyParsed {
		r.bodyParsed = true
		raw := r.c.Body()
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &r.body)
		}
	}
	if v, ok := r.body[name].(string); ok {
		return v
	}
	return ""
}

// RequireIdentity devuelve el middleware que resuelve la identidad de la
// petición según la política de la ruta y la deja en c.Locals. La política
// es un struct de datos declarado en el router, no un closure por ruta.
func RequireIdentity(resolver *identity.Resolver, pol identity.RoutePolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := resolver.Resolve(c.Context(), &fiberRequest{c: c}, pol)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSessionExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "SESSION_EXPIRED", Message: "la sesión de invitado expiró"})
			case errors.Is(err, domain.ErrUnauthorized):
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "se requiere autenticación"})
			case errors.Is(err, domain.ErrForbidden):
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin acceso a esta ruta"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}

		c.Locals(LocalIdentity, id)
		// Devolver siempre el token vigente del invitado: cubre tanto el
		// aprovisionamiento automático como la renovación del cliente.
		if id.Kind == entity.KindGuest {
			c.Set(GuestTokenHeader, id.ID)
		}
		return c.Next()
	}
}

// GetIdentity devuelve la identidad resuelta del contexto (después del middleware).
func GetIdentity(c *fiber.Ctx) entity.Identity {
	v := c.Locals(LocalIdentity)
	if v == nil {
		return entity.Anonymous()
	}
	id, ok := v.(entity.Identity)
	if !ok {
		return entity.Anonymous()
	}
	return id
}
