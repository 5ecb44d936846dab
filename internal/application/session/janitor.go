package session

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// CartDeleter es el único primitivo del motor de carritos que necesita el
// janitor: borrar el carrito asociado a una sesión barrida.
type CartDeleter interface {
	Delete(ctx context.Context, ownerKey string) error
}

// Janitor barre periódicamente las sesiones de invitado expiradas y sus
// carritos huérfanos. Nunca toca una sesión con migración en curso; los
// barridos son idempotentes y seguros de ejecutar en paralelo con el tráfico
// y consigo mismos.
type Janitor struct {
	sessions        repository.GuestSessionRepository
	carts           CartDeleter
	interval        time.Duration
	migratingMaxAge time.Duration // 0 = nunca barrer marcas migrating colgadas
	batchSize       int
	log             *logger.Logger
	stop            chan struct{}
	done            chan struct{}
}

// NewJanitor construye el janitor con su configuración.
func NewJanitor(sessions repository.GuestSessionRepository, carts CartDeleter, cfg config.JanitorConfig, log *logger.Logger) *Janitor {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}
	return &Janitor{
		sessions:        sessions,
		carts:           carts,
		interval:        interval,
		migratingMaxAge: time.Duration(cfg.MigratingMaxAgeMinutes) * time.Minute,
		batchSize:       batch,
		log:             log,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Start lanza el bucle de barrido en una goroutine. Se detiene con Stop o
// cancelando ctx.
func (j *Janitor) Start(ctx context.Context) {
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := j.Sweep(ctx); err != nil {
					j.log.Error().Err(err).Msg("barrido de sesiones falló")
				}
			case <-ctx.Done():
				return
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop detiene el bucle y espera a que termine el barrido en curso.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}

// Sweep ejecuta un barrido: elimina cada sesión vencida sin marca de
// migración, y después su carrito. La guarda de migración se re-evalúa en el
// borrado mismo de la sesión, no solo en el listado. Devuelve cuántas
// sesiones se reclamaron.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := j.sessions.ListExpired(ctx, now, j.migratingMaxAge, j.batchSize)
	if err != nil {
		return 0, err
	}

	var stuckBefore time.Time
	if j.migratingMaxAge > 0 {
		stuckBefore = now.Add(-j.migratingMaxAge)
	}

	reclaimed := 0
	for _, s := range expired {
		ok, err := j.reclaim(ctx, s, stuckBefore)
		if err != nil {
			// Best-effort: registrar y seguir con el resto; el próximo
			// barrido converge al mismo estado final.
			j.log.Warn().Err(err).Str("token", abbreviate(s.Token)).Msg("no se pudo reclamar la sesión expirada")
		}
		if ok {
			reclaimed++
		}
	}
	if reclaimed > 0 {
		j.log.Info().Int("reclaimed", reclaimed).Msg("sesiones de invitado expiradas reclamadas")
	}
	return reclaimed, nil
}

// reclaim borra primero la sesión, con la guarda de migración re-evaluada en
// el borrado: una migración que marcó la sesión después del listado la salva,
// y con ella a su carrito. El carrito solo se borra si la sesión cayó.
func (j *Janitor) reclaim(ctx context.Context, s *entity.GuestSession, stuckBefore time.Time) (bool, error) {
	ok, err := j.sessions.DeleteReclaimable(ctx, s.Token, stuckBefore)
	if err != nil || !ok {
		return false, err
	}
	if err := j.carts.Delete(ctx, entity.GuestOwnerKey(s.Token)); err != nil {
		return true, err
	}
	return true, nil
}
