package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id, catalogID string) (*entity.Product, error)
	List(ctx context.Context, catalogID string, limit, offset int) ([]*entity.Product, error)
}
