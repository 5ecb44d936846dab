package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// Catalog es el colaborador externo de catálogo que usa el motor para
// validar productos antes de aceptarlos en un carrito. Lo implementa
// *usecase.ProductUseCase; sus fallos se exponen como errores de validación,
// no del motor.
type Catalog interface {
	Exists(ctx context.Context, productID, catalogID string) (bool, error)
}

// Engine es el motor de estado de carritos: un agregado por identidad,
// mutaciones linealizadas por ownerKey mediante lock por clave más
// escritura protegida por versión con reintentos acotados.
type Engine struct {
	carts      repository.CartRepository
	catalog    Catalog
	maxQty     int
	maxRetries int
	locks      *ownerLocks
	log        *logger.Logger
}

// NewEngine construye el motor de carritos.
func NewEngine(carts repository.CartRepository, catalog Catalog, cfg config.CartConfig, log *logger.Logger) *Engine {
	maxQty := cfg.MaxQtyPerLine
	if maxQty <= 0 {
		maxQty = 99
	}
	retries := cfg.MaxUpdateRetries
	if retries <= 0 {
		retries = 4
	}
	return &Engine{
		carts:      carts,
		catalog:    catalog,
		maxQty:     maxQty,
		maxRetries: retries,
		locks:      newOwnerLocks(),
		log:        log,
	}
}

// GetCart devuelve el carrito de la identidad, creándolo vacío y de forma
// idempotente en el primer acceso.
func (e *Engine) GetCart(ctx context.Context, id entity.Identity) (*entity.Cart, error) {
	key, err := ownerKeyOf(id)
	if err != nil {
		return nil, err
	}
	return e.getOrCreate(ctx, key)
}

// AddItem suma qty (positivo) a la línea (productID, catalogID); si no
// existe, la crea. El producto debe existir en el catálogo. Si la suma
// superaría el tope por línea la operación se rechaza completa: el recorte
// silencioso queda reservado para la migración, donde no hay cliente al que
// avisar.
func (e *Engine) AddItem(ctx context.Context, id entity.Identity, productID, catalogID string, qty int) (*entity.Cart, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if err := e.validateProduct(ctx, productID, catalogID); err != nil {
		return nil, err
	}
	return e.mutate(ctx, id, func(c *entity.Cart, now time.Time) error {
		c.AddQuantity(productID, catalogID, qty, now)
		if i := c.FindLine(productID, catalogID); i >= 0 && c.Items[i].Quantity > e.maxQty {
			return fmt.Errorf("%w: la cantidad por línea no puede superar %d", domain.ErrInvalidInput, e.maxQty)
		}
		return nil
	})
}

// UpdateItem fija la cantidad absoluta de la línea. qty <= 0 la elimina;
// actualizar una línea inexistente con qty positivo equivale a AddItem.
// Una cantidad por encima del tope por línea se rechaza.
func (e *Engine) UpdateItem(ctx context.Context, id entity.Identity, productID, catalogID string, qty int) (*entity.Cart, error) {
	if qty > e.maxQty {
		return nil, fmt.Errorf("%w: la cantidad por línea no puede superar %d", domain.ErrInvalidInput, e.maxQty)
	}
	if qty > 0 {
		if err := e.validateProduct(ctx, productID, catalogID); err != nil {
			return nil, err
		}
	}
	return e.mutate(ctx, id, func(c *entity.Cart, now time.Time) error {
		c.SetQuantity(productID, catalogID, qty, now)
		return nil
	})
}

// RemoveItem elimina la línea si existe; si no existe es un no-op, no un error.
func (e *Engine) RemoveItem(ctx context.Context, id entity.Identity, productID, catalogID string) (*entity.Cart, error) {
	return e.mutate(ctx, id, func(c *entity.Cart, _ time.Time) error {
		c.RemoveLine(productID, catalogID)
		return nil
	})
}

// Clear vacía todas las líneas del carrito.
func (e *Engine) Clear(ctx context.Context, id entity.Identity) (*entity.Cart, error) {
	return e.mutate(ctx, id, func(c *entity.Cart, _ time.Time) error {
		c.Clear()
		return nil
	})
}

// Delete elimina el carrito completo de una clave (primitivo usado por el
// janitor y por la migración).
func (e *Engine) Delete(ctx context.Context, ownerKey string) error {
	return e.carts.Delete(ctx, ownerKey)
}

// ownerKeyOf deriva la clave de carrito; Anonymous no tiene carrito.
func ownerKeyOf(id entity.Identity) (string, error) {
	if !id.HasCart() {
		return "", domain.ErrNoIdentity
	}
	key := id.OwnerKey()
	if key == "" || (id.Kind == entity.KindUser && id.ID == "") {
		return "", domain.ErrNoIdentity
	}
	return key, nil
}

// validateProduct consulta el catálogo; un producto desconocido es un error
// de validación del llamador.
func (e *Engine) validateProduct(ctx context.Context, productID, catalogID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if e.catalog == nil {
		return nil
	}
	ok, err := e.catalog.Exists(ctx, productID, catalogID)
	if err != nil {
		return fmt.Errorf("%w: no se pudo validar el producto: %v", domain.ErrInvalidInput, err)
	}
	if !ok {
		return fmt.Errorf("%w: el producto no existe", domain.ErrInvalidInput)
	}
	return nil
}

// clampLine aplica el tope de cantidad por línea. Solo lo usa la migración:
// ahí las cantidades vienen de dos carritos legítimos y recortar es mejor
// que abortar el move.
func (e *Engine) clampLine(c *entity.Cart, productID, catalogID string) {
	if i := c.FindLine(productID, catalogID); i >= 0 && c.Items[i].Quantity > e.maxQty {
		c.Items[i].Quantity = e.maxQty
	}
}

// mutate toma el lock del ownerKey y ejecuta el ciclo leer-modificar-escribir.
func (e *Engine) mutate(ctx context.Context, id entity.Identity, fn func(*entity.Cart, time.Time) error) (*entity.Cart, error) {
	key, err := ownerKeyOf(id)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.Lock(key)
	defer unlock()
	return e.updateLocked(ctx, key, fn)
}

// updateLocked ejecuta el ciclo leer-modificar-escribir protegido por
// versión, con reintentos acotados ante conflicto. El llamador debe tener el
// lock de key (la migración lo invoca con ambos locks tomados).
func (e *Engine) updateLocked(ctx context.Context, key string, fn func(*entity.Cart, time.Time) error) (*entity.Cart, error) {
	for attempt := 0; ; attempt++ {
		current, err := e.getOrCreate(ctx, key)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		next := current.Clone()
		if err := fn(next, now); err != nil {
			return nil, err
		}
		next.Version = current.Version + 1
		next.UpdatedAt = now

		err = e.carts.UpdateVersioned(ctx, next, current.Version)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, domain.ErrVersionMismatch) {
			return nil, fmt.Errorf("escribir carrito %s: %w", key, err)
		}
		if attempt >= e.maxRetries {
			e.log.Warn().Str("owner_key", key).Int("attempts", attempt+1).Msg("conflicto de versión persistente en carrito")
			return nil, domain.ErrConflict
		}
		// Backoff corto antes de releer: otro proceso ganó la escritura.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond << uint(attempt)):
		}
	}
}

// getOrCreate lee el carrito de key o lo crea vacío. La carrera de creación
// se resuelve con ErrDuplicate + relectura, así llamadas repetidas nunca
// crean duplicados.
func (e *Engine) getOrCreate(ctx context.Context, key string) (*entity.Cart, error) {
	c, err := e.carts.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("leer carrito %s: %w", key, err)
	}
	if c != nil {
		return c, nil
	}
	fresh := entity.NewCart(key, time.Now())
	if err := e.carts.Create(ctx, fresh); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			c, err = e.carts.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("releer carrito %s: %w", key, err)
			}
			if c != nil {
				return c, nil
			}
		}
		return nil, fmt.Errorf("crear carrito %s: %w", key, err)
	}
	return fresh, nil
}
