package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// stubCatalog da por existentes los productos de la lista.
type stubCatalog map[string]bool

func (c stubCatalog) Exists(_ context.Context, productID, catalogID string) (bool, error) {
	return c[productID+"|"+catalogID], nil
}

var catalogoBase = stubCatalog{
	"p-1|":           true,
	"p-2|":           true,
	"p-1|cat-verano": true,
}

func buildEngine(cfg config.CartConfig) (*cart.Engine, *memory.CartRepo) {
	repo := memory.NewCartRepository()
	return cart.NewEngine(repo, catalogoBase, cfg, logger.Nop()), repo
}

func guestID(token string) entity.Identity {
	return entity.Identity{Kind: entity.KindGuest, ID: token, Role: entity.RoleGuest}
}

func userID(id string) entity.Identity {
	return entity.Identity{Kind: entity.KindUser, ID: id, Role: entity.RoleCustomer}
}

func TestGetCart_CreaVacioIdempotente(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := guestID("tok-1")

	c1, err := e.GetCart(ctx, id)
	require.NoError(t, err)
	assert.True(t, c1.IsEmpty())
	assert.Equal(t, int64(1), c1.Version)
	assert.Equal(t, "guest:tok-1", c1.OwnerKey)

	// Segundo acceso: mismo carrito, sin duplicados ni versión nueva.
	c2, err := e.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c1.Version, c2.Version)
	assert.True(t, c2.IsEmpty())
}

func TestGetCart_Anonymous_NoIdentity(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})

	_, err := e.GetCart(context.Background(), entity.Anonymous())
	assert.ErrorIs(t, err, domain.ErrNoIdentity)
}

func TestAddItem_AcumulaCantidades(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	c, err := e.AddItem(ctx, id, "p-1", "", 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	c, err = e.AddItem(ctx, id, "p-1", "", 3)
	require.NoError(t, err)
	require.Len(t, c.Items, 1, "la misma línea se acumula, no se duplica")
	assert.Equal(t, 5, c.Items[0].Quantity)

	// Mismo producto en otro catálogo = otra línea.
	c, err = e.AddItem(ctx, id, "p-1", "cat-verano", 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2, "(product_id, catalog_id) identifica la línea")
}

func TestAddItem_Validaciones(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	_, err := e.AddItem(ctx, id, "p-1", "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero no es válida")

	_, err = e.AddItem(ctx, id, "p-1", "", -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.AddItem(ctx, id, "producto-fantasma", "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "producto fuera del catálogo se rechaza")

	_, err = e.AddItem(ctx, id, "", "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddItem_RechazaSuperarElTope(t *testing.T) {
	e, repo := buildEngine(config.CartConfig{MaxQtyPerLine: 5, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	c, err := e.AddItem(ctx, id, "p-1", "", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)

	_, err = e.AddItem(ctx, id, "p-1", "", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "superar el tope rechaza la operación, no la recorta")

	// La operación rechazada no deja rastro.
	stored, err := repo.Get(ctx, entity.UserOwnerKey("u-1"))
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Items[0].Quantity)

	// Hasta el tope exacto sí cabe.
	c, err = e.AddItem(ctx, id, "p-1", "", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestUpdateItem_RechazaSuperarElTope(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 5, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	_, err := e.UpdateItem(ctx, id, "p-1", "", 6)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := e.UpdateItem(ctx, id, "p-1", "", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestUpdateItem_FijaCantidadAbsoluta(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	_, err := e.AddItem(ctx, id, "p-1", "", 7)
	require.NoError(t, err)

	c, err := e.UpdateItem(ctx, id, "p-1", "", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity, "update fija, no suma")

	// qty <= 0 elimina la línea.
	c, err = e.UpdateItem(ctx, id, "p-1", "", 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	// Update de línea inexistente con qty positivo la crea.
	c, err = e.UpdateItem(ctx, id, "p-2", "", 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestRemoveItem_AusenteEsNoOp(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	_, err := e.AddItem(ctx, id, "p-1", "", 2)
	require.NoError(t, err)

	c, err := e.RemoveItem(ctx, id, "p-2", "")
	require.NoError(t, err, "quitar una línea inexistente no es un error")
	assert.Len(t, c.Items, 1)

	c, err = e.RemoveItem(ctx, id, "p-1", "")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestClear_VaciaElCarrito(t *testing.T) {
	e, _ := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-1")

	_, err := e.AddItem(ctx, id, "p-1", "", 2)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, id, "p-2", "", 1)
	require.NoError(t, err)

	c, err := e.Clear(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Greater(t, c.Version, int64(1), "cada mutación incrementa la versión")
}

func TestAddItem_ConcurrenciaSinPerderIncrementos(t *testing.T) {
	e, repo := buildEngine(config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4})
	ctx := context.Background()
	id := userID("u-concurrente")

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.AddItem(ctx, id, "p-1", "", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddItem concurrente falló: %v", err)
	}

	final, err := repo.Get(ctx, entity.UserOwnerKey("u-concurrente"))
	require.NoError(t, err)
	require.NotNil(t, final)
	require.Len(t, final.Items, 1)
	assert.Equal(t, workers, final.Items[0].Quantity, "ningún incremento concurrente se pierde")
}

// flakyCartRepo inyecta conflictos de versión en las primeras escrituras.
type flakyCartRepo struct {
	repository.CartRepository
	mu   sync.Mutex
	fail int
}

func (r *flakyCartRepo) UpdateVersioned(ctx context.Context, c *entity.Cart, expectedVersion int64) error {
	r.mu.Lock()
	inject := r.fail > 0
	if inject {
		r.fail--
	}
	r.mu.Unlock()
	if inject {
		return domain.ErrVersionMismatch
	}
	return r.CartRepository.UpdateVersioned(ctx, c, expectedVersion)
}

func TestUpdateLocked_ReintentaTrasConflicto(t *testing.T) {
	repo := &flakyCartRepo{CartRepository: memory.NewCartRepository(), fail: 2}
	e := cart.NewEngine(repo, catalogoBase, config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 4}, logger.Nop())

	c, err := e.AddItem(context.Background(), userID("u-1"), "p-1", "", 2)
	require.NoError(t, err, "dos conflictos caben dentro del presupuesto de reintentos")
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestUpdateLocked_ConflictoPersistente_ErrConflict(t *testing.T) {
	repo := &flakyCartRepo{CartRepository: memory.NewCartRepository(), fail: 1 << 20}
	e := cart.NewEngine(repo, catalogoBase, config.CartConfig{MaxQtyPerLine: 99, MaxUpdateRetries: 2}, logger.Nop())

	_, err := e.AddItem(context.Background(), userID("u-1"), "p-1", "", 2)
	assert.ErrorIs(t, err, domain.ErrConflict, "agotar los reintentos expone ErrConflict")
}
