package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// MigratingSessions es el contrato mínimo sobre sesiones que necesita la
// migración: marcar/limpiar la protección frente al janitor y borrar la
// sesión al terminar. Lo implementa *session.Service.
type MigratingSessions interface {
	MarkMigrating(ctx context.Context, token string) error
	ClearMigrating(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
}

// Merger mueve el contenido del carrito de un invitado al carrito del
// usuario recién autenticado, exactamente una vez y de forma atómica. La
// migración es un move, no un copy: al confirmar no queda estado de invitado
// alcanzable.
type Merger struct {
	engine   *Engine
	sessions MigratingSessions
	log      *logger.Logger
}

// NewMerger construye el algoritmo de migración sobre el motor de carritos.
func NewMerger(engine *Engine, sessions MigratingSessions, log *logger.Logger) *Merger {
	return &Merger{engine: engine, sessions: sessions, log: log}
}

// Migrate ejecuta la migración (guestToken, userID):
//
//  1. Carrito de invitado ausente o vacío ⇒ éxito no-op (reintentos seguros).
//  2. Marcar la sesión migrando antes de tocar estado de carritos. Si la
//     sesión ya no existe (el janitor ganó la carrera en un reintento), el
//     carrito huérfano se migra igual y se omite la contabilidad de sesión.
//  3. Locks de ambas claves en orden fijo: guest antes que user.
//  4. Mezcla aditiva por línea (productID, catalogID), con tope por línea.
//  5. Una única escritura del destino protegida por versión (reintentada
//     releyendo el último estado si una mutación ordinaria compite).
//  6. Al confirmar: borrar carrito y sesión del invitado. Ante cualquier
//     fallo previo a confirmar no se escribe nada, la marca se limpia y el
//     llamador puede reintentar la operación completa.
func (m *Merger) Migrate(ctx context.Context, guestToken, userID string) (*entity.Cart, error) {
	if guestToken == "" || userID == "" {
		return nil, fmt.Errorf("%w: guest_token y user_id son requeridos", domain.ErrInvalidInput)
	}
	guestKey := entity.GuestOwnerKey(guestToken)
	userKey := entity.UserOwnerKey(userID)

	// Mirada rápida sin locks: la mayoría de reintentos terminan aquí.
	guestCart, err := m.engine.carts.Get(ctx, guestKey)
	if err != nil {
		return nil, fmt.Errorf("%w: leer carrito de invitado: %v", domain.ErrMergeFailure, err)
	}
	if guestCart == nil || guestCart.IsEmpty() {
		return m.engine.getOrCreate(ctx, userKey)
	}

	marked := true
	if err := m.sessions.MarkMigrating(ctx, guestToken); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: marcar sesión migrando: %v", domain.ErrMergeFailure, err)
		}
		marked = false // sesión ya barrida: carrito huérfano, se migra igual
	}

	unlock := m.engine.locks.LockPair(guestKey, userKey)
	defer unlock()

	merged, err := m.migrateLocked(ctx, guestKey, userKey)
	if err != nil {
		// Nada confirmado: limpiar la marca para que el reintento sea seguro.
		if marked {
			if clearErr := m.sessions.ClearMigrating(ctx, guestToken); clearErr != nil {
				m.log.Error().Err(clearErr).Msg("no se pudo limpiar la marca migrating tras un fallo")
			}
		}
		return nil, err
	}

	// Confirmado: el move exige que no quede estado de invitado alcanzable.
	if err := m.engine.carts.Delete(ctx, guestKey); err != nil {
		m.log.Error().Err(err).Str("owner_key", guestKey).Msg("destino confirmado pero el carrito de invitado no se pudo borrar; requiere limpieza manual")
		return nil, fmt.Errorf("%w: borrar carrito de invitado: %v", domain.ErrMergeFailure, err)
	}
	if marked {
		if err := m.sessions.Delete(ctx, guestToken); err != nil {
			// El carrito ya no existe; si esto falla el janitor barrerá la
			// sesión cuando expire.
			m.log.Warn().Err(err).Msg("no se pudo borrar la sesión de invitado migrada")
		}
	}

	m.log.Info().Str("user_key", userKey).Int("lines", len(merged.Items)).Msg("carrito de invitado migrado")
	return merged, nil
}

// migrateLocked hace la mezcla aditiva con ambos locks tomados.
func (m *Merger) migrateLocked(ctx context.Context, guestKey, userKey string) (*entity.Cart, error) {
	// Releer bajo lock: el carrito pudo cambiar entre la mirada rápida y el lock.
	guestCart, err := m.engine.carts.Get(ctx, guestKey)
	if err != nil {
		return nil, fmt.Errorf("%w: releer carrito de invitado: %v", domain.ErrMergeFailure, err)
	}
	if guestCart == nil || guestCart.IsEmpty() {
		return m.engine.getOrCreate(ctx, userKey)
	}

	merged, err := m.engine.updateLocked(ctx, userKey, func(dest *entity.Cart, now time.Time) error {
		for _, it := range guestCart.Items {
			dest.AddQuantity(it.ProductID, it.CatalogID, it.Quantity, now)
			m.engine.clampLine(dest, it.ProductID, it.CatalogID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: escribir carrito destino: %v", domain.ErrMergeFailure, err)
	}
	return merged, nil
}
