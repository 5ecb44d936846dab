package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.GuestSessionRepository = (*GuestSessionRepo)(nil)

// GuestSessionRepo implementación del puerto GuestSessionRepository sobre PostgreSQL.
type GuestSessionRepo struct {
	q Querier
}

// NewGuestSessionRepository construye el adaptador de persistencia para sesiones de invitado.
func NewGuestSessionRepository(q Querier) *GuestSessionRepo {
	return &GuestSessionRepo{q: q}
}

// Create persiste una sesión nueva.
func (r *GuestSessionRepo) Create(ctx context.Context, s *entity.GuestSession) error {
	query := `
		INSERT INTO guest_sessions (token, created_at, expires_at, last_seen_at, migrating_since)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, s.Token, s.CreatedAt, s.ExpiresAt, s.LastSeenAt, s.MigratingSince)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert guest session: %w", err)
	}
	return nil
}

// FindByToken devuelve la sesión del token, o (nil, nil) si no existe.
func (r *GuestSessionRepo) FindByToken(ctx context.Context, token string) (*entity.GuestSession, error) {
	query := `
		SELECT token, created_at, expires_at, last_seen_at, migrating_since
		FROM guest_sessions WHERE token = $1`
	var s entity.GuestSession
	err := r.q.QueryRow(ctx, query, token).Scan(&s.Token, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt, &s.MigratingSince)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guest session: %w", err)
	}
	return &s, nil
}

// Touch actualiza LastSeenAt sin mover ExpiresAt.
func (r *GuestSessionRepo) Touch(ctx context.Context, token string, seenAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE guest_sessions SET last_seen_at = $2 WHERE token = $1`, token, seenAt)
	if err != nil {
		return fmt.Errorf("touch guest session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetMigrating fija o limpia la marca de migración.
func (r *GuestSessionRepo) SetMigrating(ctx context.Context, token string, since *time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE guest_sessions SET migrating_since = $2 WHERE token = $1`, token, since)
	if err != nil {
		return fmt.Errorf("set migrating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la sesión; ausente no es error.
func (r *GuestSessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM guest_sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete guest session: %w", err)
	}
	return nil
}

// DeleteReclaimable elimina la sesión con la guarda de migración en el mismo
// DELETE: una marca puesta entre el listado y el borrado deja cero filas.
func (r *GuestSessionRepo) DeleteReclaimable(ctx context.Context, token string, stuckBefore time.Time) (bool, error) {
	query := `
		DELETE FROM guest_sessions
		WHERE token = $1
		  AND (migrating_since IS NULL OR ($2 AND migrating_since < $3))`
	tag, err := r.q.Exec(ctx, query, token, !stuckBefore.IsZero(), stuckBefore)
	if err != nil {
		return false, fmt.Errorf("delete reclaimable session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListExpired devuelve las sesiones barribles por el janitor.
func (r *GuestSessionRepo) ListExpired(ctx context.Context, now time.Time, migratingMaxAge time.Duration, limit int) ([]*entity.GuestSession, error) {
	query := `
		SELECT token, created_at, expires_at, last_seen_at, migrating_since
		FROM guest_sessions
		WHERE (expires_at < $1 AND migrating_since IS NULL)
		   OR ($2 AND migrating_since IS NOT NULL AND migrating_since < $3)
		LIMIT $4`
	stuckBefore := now.Add(-migratingMaxAge)
	rows, err := r.q.Query(ctx, query, now, migratingMaxAge > 0, stuckBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	defer rows.Close()

	var out []*entity.GuestSession
	for rows.Next() {
		var s entity.GuestSession
		if err := rows.Scan(&s.Token, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt, &s.MigratingSince); err != nil {
			return nil, fmt.Errorf("scan expired session: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
