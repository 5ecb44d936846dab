package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

type productKey struct {
	id        string
	catalogID string
}

// ProductRepo implementación en memoria del puerto ProductRepository.
type ProductRepo struct {
	mu       sync.RWMutex
	products map[productKey]*entity.Product
}

// NewProductRepository construye el adaptador en memoria para productos.
func NewProductRepository() *ProductRepo {
	return &ProductRepo{products: make(map[productKey]*entity.Product)}
}

// Create persiste un producto; ErrDuplicate si (id, catálogo) ya existe.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := productKey{product.ID, product.CatalogID}
	if _, ok := r.products[k]; ok {
		return domain.ErrDuplicate
	}
	cp := *product
	r.products[k] = &cp
	return nil
}

// GetByID devuelve el producto o (nil, nil).
func (r *ProductRepo) GetByID(_ context.Context, id, catalogID string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[productKey{id, catalogID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// List devuelve una página de productos del catálogo, ordenada por SKU para
// que la paginación sea estable.
func (r *ProductRepo) List(_ context.Context, catalogID string, limit, offset int) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*entity.Product
	for k, p := range r.products {
		if k.catalogID == catalogID {
			cp := *p
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
