package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
)

func buildProductUC() *usecase.ProductUseCase {
	return usecase.NewProductUseCase(memory.NewProductRepository())
}

func mustCreate(t *testing.T, uc *usecase.ProductUseCase, sku, name, price string) *dto.ProductResponse {
	t.Helper()
	p, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:   sku,
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func TestProductUC_CreateYGetByID(t *testing.T) {
	uc := buildProductUC()
	ctx := context.Background()

	created := mustCreate(t, uc, "SKU-1", "Azúcar morena", "12500.50")
	require.NotEmpty(t, created.ID)

	got, err := uc.GetByID(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Azúcar morena", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12500.50")), "el precio decimal se conserva exacto")

	_, err = uc.GetByID(ctx, "id-inexistente", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUC_Create_Validaciones(t *testing.T) {
	uc := buildProductUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "sin sku", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "S-1", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el nombre es requerido")

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "S-1", Name: "precio negativo", Price: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUC_ExistsYPriceOf(t *testing.T) {
	uc := buildProductUC()
	ctx := context.Background()

	created := mustCreate(t, uc, "SKU-1", "Café", "35000")

	ok, err := uc.Exists(ctx, created.ID, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.Exists(ctx, "id-inexistente", "")
	require.NoError(t, err)
	assert.False(t, ok, "un producto no publicado no existe para el carrito")

	price, err := uc.PriceOf(ctx, created.ID, "")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(35000)))

	_, err = uc.PriceOf(ctx, "id-inexistente", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUC_Search_InsensibleAAcentosYMayusculas(t *testing.T) {
	uc := buildProductUC()
	ctx := context.Background()

	mustCreate(t, uc, "SKU-1", "Azúcar morena", "100")
	mustCreate(t, uc, "SKU-2", "Café colombiano", "200")
	mustCreate(t, uc, "SKU-3", "Panela", "300")

	out, err := uc.Search(ctx, "", "azucar", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out, 1, `"azucar" debe encontrar "Azúcar"`)
	assert.Equal(t, "SKU-1", out[0].SKU)

	out, err = uc.Search(ctx, "", "CAFÉ", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "SKU-2", out[0].SKU)

	// También por SKU.
	out, err = uc.Search(ctx, "", "sku-3", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Panela", out[0].Name)

	out, err = uc.Search(ctx, "", "inexistente", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
