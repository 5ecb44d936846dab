package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/pkg/jwt"
)

// TokenVerifier es el contrato mínimo que necesita el resolutor para validar
// credenciales. Lo implementa *jwt.Validator; la interfaz permite dobles en
// tests y evita acoplar el resolutor al secret del proceso.
type TokenVerifier interface {
	Verify(credential string) (*jwt.Claims, error)
}

// GuestSessions es el contrato mínimo sobre sesiones de invitado que usa el
// resolutor. Lo implementa *session.Service.
type GuestSessions interface {
	FindByToken(ctx context.Context, token string) (*entity.GuestSession, error)
	Touch(ctx context.Context, token string) error
	Create(ctx context.Context) (*entity.GuestSession, error)
}

// Resolver decide exactamente una identidad lógica por petición a partir de
// los campos crudos y la política de la ruta. Dependencias inyectadas por
// constructor; sin estado mutable propio.
type Resolver struct {
	verifier TokenVerifier
	sessions GuestSessions
}

// NewResolver construye el resolutor de identidad.
func NewResolver(verifier TokenVerifier, sessions GuestSessions) *Resolver {
	return &Resolver{verifier: verifier, sessions: sessions}
}

// Resolve aplica el procedimiento de decisión determinista:
//
//  1. Extraer credencial bearer (primera ubicación no vacía) y quitar prefijo.
//  2. Credencial válida ⇒ identidad User. Una credencial inválida NO corta
//     aquí: la petición aún puede calificar como Guest o Anonymous según la
//     política.
//  3. Sin User y con AllowGuest: buscar token de invitado; sesión existente y
//     no expirada ⇒ Touch + identidad Guest. Una sesión expirada se trata
//     como ausente aunque el janitor no la haya barrido (defensa en
//     profundidad).
//  4. Sin resolver, AllowGuest y sin RequireAuth ⇒ auto-aprovisionar sesión.
//  5. Sin resolver: RequireAuth ⇒ falla; si no, Anonymous.
//  6. Chequeo de roles al final; Anonymous nunca pasa una lista no vacía.
func (r *Resolver) Resolve(ctx context.Context, req RequestValues, pol RoutePolicy) (entity.Identity, error) {
	var resolved entity.Identity
	sessionExpired := false

	if cred := extractFirst(req, credentialLocations); cred != "" {
		claims, err := r.verifier.Verify(stripCredentialPrefix(cred))
		if err == nil {
			resolved = entity.Identity{
				Kind: entity.KindUser,
				ID:   claims.UserID,
				Role: claims.Role,
			}
			if claims.ExpiresAt != nil {
				resolved.CredentialExpiry = claims.ExpiresAt.Time
			}
		}
		// Credencial inválida: seguir con el fallback de invitado.
	}

	if resolved.Kind == "" && pol.AllowGuest {
		if tok := extractFirst(req, guestTokenLocations); tok != "" {
			s, err := r.sessions.FindByToken(ctx, tok)
			if err != nil {
				return entity.Identity{}, fmt.Errorf("buscar sesión de invitado: %w", err)
			}
			switch {
			case s == nil:
				// token nunca emitido o ya barrido: sigue sin resolver
			case s.IsExpired(time.Now()):
				sessionExpired = true
			default:
				if err := r.sessions.Touch(ctx, tok); err != nil {
					return entity.Identity{}, fmt.Errorf("refrescar sesión de invitado: %w", err)
				}
				resolved = entity.Identity{Kind: entity.KindGuest, ID: tok, Role: entity.RoleGuest}
			}
		}
	}

	if resolved.Kind == "" && pol.AllowGuest && !pol.RequireAuth {
		s, err := r.sessions.Create(ctx)
		if err != nil {
			return entity.Identity{}, fmt.Errorf("aprovisionar sesión de invitado: %w", err)
		}
		resolved = entity.Identity{Kind: entity.KindGuest, ID: s.Token, Role: entity.RoleGuest}
	}

	if resolved.Kind == "" {
		if pol.RequireAuth {
			if sessionExpired {
				return entity.Identity{}, domain.ErrSessionExpired
			}
			return entity.Identity{}, domain.ErrUnauthorized
		}
		resolved = entity.Anonymous()
	}

	if len(pol.AllowedRoles) > 0 {
		if resolved.Kind == entity.KindAnonymous || !pol.roleAllowed(resolved.Role) {
			return entity.Identity{}, domain.ErrForbidden
		}
	}

	return resolved, nil
}
