package dto

import (
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// CartItemRequest línea enviada por el cliente para add/update.
type CartItemRequest struct {
	ProductID string `json:"product_id"`
	CatalogID string `json:"catalog_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CartItemResponse línea del carrito.
type CartItemResponse struct {
	ProductID string    `json:"product_id"`
	CatalogID string    `json:"catalog_id,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartResponse carrito completo con su versión (token de concurrencia).
type CartResponse struct {
	OwnerKey  string             `json:"owner_key"`
	Items     []CartItemResponse `json:"items"`
	Version   int64              `json:"version"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// MigrateRequest migración explícita de carrito de invitado.
type MigrateRequest struct {
	GuestToken string `json:"guest_token"`
}

// ToCartResponse mapea la entidad al DTO de respuesta.
func ToCartResponse(c *entity.Cart) *CartResponse {
	if c == nil {
		return nil
	}
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemResponse{
			ProductID: it.ProductID,
			CatalogID: it.CatalogID,
			Quantity:  it.Quantity,
			AddedAt:   it.AddedAt,
		})
	}
	return &CartResponse{
		OwnerKey:  c.OwnerKey,
		Items:     items,
		Version:   c.Version,
		UpdatedAt: c.UpdatedAt,
	}
}
