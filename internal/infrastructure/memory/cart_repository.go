package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación en memoria del puerto CartRepository. Cada carrito
// se trata como un documento: Get devuelve copias y UpdateVersioned solo
// escribe si la versión guardada coincide con la esperada.
type CartRepo struct {
	mu    sync.RWMutex
	carts map[string]*entity.Cart
}

// NewCartRepository construye el adaptador en memoria para carritos.
func NewCartRepository() *CartRepo {
	return &CartRepo{carts: make(map[string]*entity.Cart)}
}

// Get devuelve una copia del carrito, o (nil, nil) si no existe.
func (r *CartRepo) Get(_ context.Context, ownerKey string) (*entity.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[ownerKey]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

// Create persiste un carrito nuevo; ErrDuplicate si la clave ya existe.
func (r *CartRepo) Create(_ context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.OwnerKey]; ok {
		return domain.ErrDuplicate
	}
	r.carts[cart.OwnerKey] = cart.Clone()
	return nil
}

// UpdateVersioned escribe el documento completo si la versión guardada
// coincide con expectedVersion; si no, ErrVersionMismatch.
func (r *CartRepo) UpdateVersioned(_ context.Context, cart *entity.Cart, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.carts[cart.OwnerKey]
	if !ok || current.Version != expectedVersion {
		return domain.ErrVersionMismatch
	}
	r.carts[cart.OwnerKey] = cart.Clone()
	return nil
}

// Delete elimina el carrito; ausente no es error.
func (r *CartRepo) Delete(_ context.Context, ownerKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, ownerKey)
	return nil
}
