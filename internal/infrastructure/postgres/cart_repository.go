package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación del puerto CartRepository sobre PostgreSQL. Las
// líneas se guardan como documento JSONB en la fila del carrito, así la
// escritura del agregado completo es una única UPDATE protegida por versión.
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador de persistencia para carritos. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// Get devuelve el carrito de ownerKey, o (nil, nil) si no existe.
func (r *CartRepo) Get(ctx context.Context, ownerKey string) (*entity.Cart, error) {
	query := `
		SELECT owner_key, items, version, updated_at
		FROM carts WHERE owner_key = $1`
	var c entity.Cart
	var items []byte
	err := r.q.QueryRow(ctx, query, ownerKey).Scan(&c.OwnerKey, &items, &c.Version, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if c.Items == nil {
		c.Items = []entity.CartItem{}
	}
	return &c, nil
}

// Create persiste un carrito nuevo.
func (r *CartRepo) Create(ctx context.Context, cart *entity.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}
	query := `
		INSERT INTO carts (owner_key, items, version, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err = r.q.Exec(ctx, query, cart.OwnerKey, items, cart.Version, cart.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// UpdateVersioned escribe el documento completo con la guarda optimista
// `WHERE version = expectedVersion`; cero filas afectadas es conflicto.
func (r *CartRepo) UpdateVersioned(ctx context.Context, cart *entity.Cart, expectedVersion int64) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}
	query := `
		UPDATE carts SET items = $2, version = $3, updated_at = $4
		WHERE owner_key = $1 AND version = $5`
	tag, err := r.q.Exec(ctx, query, cart.OwnerKey, items, cart.Version, cart.UpdatedAt, expectedVersion)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionMismatch
	}
	return nil
}

// Delete elimina el carrito; ausente no es error.
func (r *CartRepo) Delete(ctx context.Context, ownerKey string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM carts WHERE owner_key = $1`, ownerKey)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
