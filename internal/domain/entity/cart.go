package entity

import "time"

// CartItem es una línea del carrito. La pareja (ProductID, CatalogID) es
// única dentro de un carrito; nunca se almacena una línea con Quantity <= 0.
type CartItem struct {
	ProductID string    `json:"product_id"`
	CatalogID string    `json:"catalog_id,omitempty"` // vacío si el producto no pertenece a un catálogo
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// SameLine indica si la línea corresponde a la pareja (productID, catalogID).
func (it CartItem) SameLine(productID, catalogID string) bool {
	return it.ProductID == productID && it.CatalogID == catalogID
}

// Cart es el agregado de carrito de una identidad. Version es el token de
// concurrencia optimista: se incrementa en cada mutación exitosa y las
// escrituras se protegen con él.
type Cart struct {
	OwnerKey  string     `json:"owner_key"` // "user:<id>" o "guest:<token>"
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart construye un carrito vacío para la clave dada, con versión inicial 1.
func NewCart(ownerKey string, now time.Time) *Cart {
	return &Cart{OwnerKey: ownerKey, Items: []CartItem{}, Version: 1, UpdatedAt: now}
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// FindLine devuelve el índice de la línea (productID, catalogID) o -1.
func (c *Cart) FindLine(productID, catalogID string) int {
	for i, it := range c.Items {
		if it.SameLine(productID, catalogID) {
			return i
		}
	}
	return -1
}

// AddQuantity suma qty a la línea (productID, catalogID), creándola si no
// existe. qty debe ser positivo; el clamp del máximo lo aplica el caso de uso.
func (c *Cart) AddQuantity(productID, catalogID string, qty int, now time.Time) {
	if i := c.FindLine(productID, catalogID); i >= 0 {
		c.Items[i].Quantity += qty
		c.Items[i].AddedAt = now
		return
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, CatalogID: catalogID, Quantity: qty, AddedAt: now})
}

// SetQuantity fija la cantidad absoluta de la línea. qty <= 0 elimina la
// línea; una línea inexistente con qty positivo se crea (equivale a add).
func (c *Cart) SetQuantity(productID, catalogID string, qty int, now time.Time) {
	i := c.FindLine(productID, catalogID)
	if qty <= 0 {
		if i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return
	}
	if i >= 0 {
		c.Items[i].Quantity = qty
		c.Items[i].AddedAt = now
		return
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, CatalogID: catalogID, Quantity: qty, AddedAt: now})
}

// RemoveLine elimina la línea si existe; si no existe es un no-op.
func (c *Cart) RemoveLine(productID, catalogID string) {
	if i := c.FindLine(productID, catalogID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Clear vacía todas las líneas.
func (c *Cart) Clear() { c.Items = []CartItem{} }

// Clone devuelve una copia profunda del carrito, para que los lectores nunca
// compartan el slice de líneas con el almacenamiento.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
