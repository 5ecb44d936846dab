package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// GuestSessionRepository define el puerto de persistencia para GuestSession.
type GuestSessionRepository interface {
	// Create persiste una sesión nueva. Devuelve domain.ErrDuplicate si el
	// token ya existe (colisión, en la práctica imposible).
	Create(ctx context.Context, s *entity.GuestSession) error

	// FindByToken devuelve la sesión del token, o (nil, nil) si no existe.
	FindByToken(ctx context.Context, token string) (*entity.GuestSession, error)

	// Touch actualiza LastSeenAt sin mover ExpiresAt.
	Touch(ctx context.Context, token string, seenAt time.Time) error

	// SetMigrating fija MigratingSince (no nulo durante una migración;
	// nil para limpiar la marca). Devuelve domain.ErrNotFound si la sesión
	// no existe.
	SetMigrating(ctx context.Context, token string, since *time.Time) error

	// Delete elimina la sesión. Ausente no es error.
	Delete(ctx context.Context, token string) error

	// DeleteReclaimable elimina la sesión solo si sigue siendo barrible: sin
	// migración en curso o, si stuckBefore no es cero, con marca migrating
	// anterior a ese instante (marca colgada). La guarda es atómica frente a
	// un SetMigrating concurrente. Devuelve si la eliminó (false: la sesión
	// está migrando o ya no existe).
	DeleteReclaimable(ctx context.Context, token string, stuckBefore time.Time) (bool, error)

	// ListExpired devuelve las sesiones con ExpiresAt < now que no están
	// migrando, hasta limit. Si migratingMaxAge > 0 incluye también las que
	// llevan migrando más de ese máximo (marca colgada tras un crash).
	ListExpired(ctx context.Context, now time.Time, migratingMaxAge time.Duration, limit int) ([]*entity.GuestSession, error)
}
