package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// CartRepository define el puerto de persistencia para Cart (DIP).
// El carrito se trata como un documento único: las escrituras reemplazan el
// agregado completo protegidas por la versión leída.
type CartRepository interface {
	// Get devuelve el carrito de ownerKey, o (nil, nil) si no existe.
	Get(ctx context.Context, ownerKey string) (*entity.Cart, error)

	// Create persiste un carrito nuevo. Devuelve domain.ErrDuplicate si ya
	// existe uno para esa clave (carrera de creación perezosa).
	Create(ctx context.Context, cart *entity.Cart) error

	// UpdateVersioned escribe el carrito completo (con cart.Version ya
	// incrementada por el llamador) solo si la versión persistida coincide
	// con expectedVersion. Devuelve domain.ErrVersionMismatch si otro
	// escritor ganó la carrera.
	UpdateVersioned(ctx context.Context, cart *entity.Cart, expectedVersion int64) error

	// Delete elimina el carrito de ownerKey. Ausente no es error.
	Delete(ctx context.Context, ownerKey string) error
}
