package usecase

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// ProductUseCase expone el catálogo de productos. Implementa el colaborador
// que consume el motor de carritos (Exists/PriceOf) además del CRUD mínimo
// para publicar productos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso de productos.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Exists indica si el producto (productID, catalogID) está publicado y activo.
func (uc *ProductUseCase) Exists(ctx context.Context, productID, catalogID string) (bool, error) {
	p, err := uc.repo.GetByID(ctx, productID, catalogID)
	if err != nil {
		return false, err
	}
	return p != nil && p.Active, nil
}

// PriceOf devuelve el precio del producto, o ErrNotFound si no está publicado.
func (uc *ProductUseCase) PriceOf(ctx context.Context, productID, catalogID string) (decimal.Decimal, error) {
	p, err := uc.repo.GetByID(ctx, productID, catalogID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil || !p.Active {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.Price, nil
}

// Create publica un producto nuevo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		CatalogID:   in.CatalogID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(p), nil
}

// GetByID devuelve el producto o ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, id, catalogID string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id, catalogID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToProductResponse(p), nil
}

// List devuelve una página de productos del catálogo.
func (uc *ProductUseCase) List(ctx context.Context, catalogID string, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.repo.List(ctx, catalogID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ToProductResponse(p))
	}
	return out, nil
}

// Search filtra productos por nombre o SKU, insensible a mayúsculas y
// acentos ("azucar" encuentra "Azúcar").
func (uc *ProductUseCase) Search(ctx context.Context, catalogID, query string, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.repo.List(ctx, catalogID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	q := normalizeSearch(query)
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if q == "" || strings.Contains(normalizeSearch(p.Name), q) || strings.Contains(normalizeSearch(p.SKU), q) {
			out = append(out, dto.ToProductResponse(p))
		}
	}
	return out, nil
}

// normalizeSearch pasa a minúsculas y elimina diacríticos (NFD + quitar
// marcas no espaciadas + NFC).
func normalizeSearch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	return strings.ToLower(strings.TrimSpace(plain))
}
