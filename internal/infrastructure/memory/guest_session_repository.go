package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.GuestSessionRepository = (*GuestSessionRepo)(nil)

// GuestSessionRepo implementación en memoria del puerto GuestSessionRepository.
type GuestSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*entity.GuestSession
}

// NewGuestSessionRepository construye el adaptador en memoria para sesiones.
func NewGuestSessionRepository() *GuestSessionRepo {
	return &GuestSessionRepo{sessions: make(map[string]*entity.GuestSession)}
}

// Create persiste una sesión nueva; ErrDuplicate si el token ya existe.
func (r *GuestSessionRepo) Create(_ context.Context, s *entity.GuestSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.Token]; ok {
		return domain.ErrDuplicate
	}
	r.sessions[s.Token] = copySession(s)
	return nil
}

// FindByToken devuelve una copia de la sesión, o (nil, nil) si no existe.
func (r *GuestSessionRepo) FindByToken(_ context.Context, token string) (*entity.GuestSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

// Touch actualiza LastSeenAt sin mover ExpiresAt.
func (r *GuestSessionRepo) Touch(_ context.Context, token string, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastSeenAt = seenAt
	return nil
}

// SetMigrating fija o limpia la marca de migración.
func (r *GuestSessionRepo) SetMigrating(_ context.Context, token string, since *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return domain.ErrNotFound
	}
	if since != nil {
		t := *since
		s.MigratingSince = &t
	} else {
		s.MigratingSince = nil
	}
	return nil
}

// Delete elimina la sesión; ausente no es error.
func (r *GuestSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

// DeleteReclaimable elimina la sesión bajo el mismo lock que SetMigrating,
// así una marca puesta después del listado del janitor siempre gana.
func (r *GuestSessionRepo) DeleteReclaimable(_ context.Context, token string, stuckBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return false, nil
	}
	if s.MigratingSince != nil && (stuckBefore.IsZero() || !s.MigratingSince.Before(stuckBefore)) {
		return false, nil
	}
	delete(r.sessions, token)
	return true, nil
}

// ListExpired devuelve las sesiones barribles: vencidas sin marca de
// migración, más las de marca colgada si migratingMaxAge > 0.
func (r *GuestSessionRepo) ListExpired(_ context.Context, now time.Time, migratingMaxAge time.Duration, limit int) ([]*entity.GuestSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.GuestSession
	for _, s := range r.sessions {
		if len(out) >= limit {
			break
		}
		switch {
		case s.MigratingSince == nil && s.IsExpired(now):
			out = append(out, copySession(s))
		case s.MigratingSince != nil && migratingMaxAge > 0 && now.Sub(*s.MigratingSince) > migratingMaxAge:
			out = append(out, copySession(s))
		}
	}
	return out, nil
}

func copySession(s *entity.GuestSession) *entity.GuestSession {
	cp := *s
	if s.MigratingSince != nil {
		t := *s.MigratingSince
		cp.MigratingSince = &t
	}
	return &cp
}
