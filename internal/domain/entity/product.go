package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto publicado en la tienda. CatalogID agrupa
// productos por catálogo (vacío = catálogo general); la pareja
// (ID, CatalogID) es la que referencian las líneas de carrito.
type Product struct {
	ID          string
	CatalogID   string // vacío si pertenece al catálogo general
	SKU         string // código único por catálogo
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
