package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// Service gestiona el ciclo de vida de las sesiones de invitado: creación
// con token impredecible, búsqueda, refresco y marca de migración.
type Service struct {
	repo       repository.GuestSessionRepository
	ttl        time.Duration
	tokenBytes int
	log        *logger.Logger
}

// NewService construye el servicio de sesiones de invitado.
func NewService(repo repository.GuestSessionRepository, cfg config.SessionConfig, log *logger.Logger) *Service {
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tokenBytes := cfg.TokenBytes
	if tokenBytes < 16 {
		tokenBytes = 32
	}
	return &Service{repo: repo, ttl: ttl, tokenBytes: tokenBytes, log: log}
}

// Create emite una sesión nueva con token criptográficamente aleatorio
// (nunca secuencial ni derivado de datos del cliente) y TTL fijo desde la
// creación.
func (s *Service) Create(ctx context.Context) (*entity.GuestSession, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sess := &entity.GuestSession{
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
		LastSeenAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("crear sesión de invitado: %w", err)
	}
	s.log.Debug().Str("token", abbreviate(token)).Time("expires_at", sess.ExpiresAt).Msg("sesión de invitado creada")
	return sess, nil
}

// FindByToken devuelve la sesión del token, o (nil, nil) si no existe.
func (s *Service) FindByToken(ctx context.Context, token string) (*entity.GuestSession, error) {
	return s.repo.FindByToken(ctx, token)
}

// Touch actualiza LastSeenAt de la sesión. No extiende ExpiresAt: el TTL es
// fijo desde la creación por decisión de política.
func (s *Service) Touch(ctx context.Context, token string) error {
	return s.repo.Touch(ctx, token, time.Now())
}

// IsExpired indica si la sesión ya venció.
func (s *Service) IsExpired(sess *entity.GuestSession) bool {
	return sess.IsExpired(time.Now())
}

// MarkMigrating fija la marca de migración en curso, que protege la sesión
// frente al janitor mientras su carrito se mueve a un usuario.
func (s *Service) MarkMigrating(ctx context.Context, token string) error {
	now := time.Now()
	return s.repo.SetMigrating(ctx, token, &now)
}

// ClearMigrating limpia la marca de migración (migración fallida o abortada).
func (s *Service) ClearMigrating(ctx context.Context, token string) error {
	return s.repo.SetMigrating(ctx, token, nil)
}

// Delete elimina la sesión (fin de una migración exitosa).
func (s *Service) Delete(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}

// newToken genera el token opaco de la sesión con crypto/rand.
func (s *Service) newToken() (string, error) {
	buf := make([]byte, s.tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generar token de sesión: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// abbreviate corta el token para logs: nunca se registra completo.
func abbreviate(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "…"
}

