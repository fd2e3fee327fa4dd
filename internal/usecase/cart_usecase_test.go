package usecase_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"storefront/internal/cartstore"
	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CatalogMock struct{ mock.Mock }

func (m *CatalogMock) FindByID(ctx context.Context, tenantID int64, productID int64) (model.Product, error) {
	args := m.Called(ctx, tenantID, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "err=%v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func newCartUsecase(catalog usecase.ProductCatalog) (*usecase.CartUsecase, *cartstore.Store, *metrics.Metrics) {
	carts := cartstore.New()
	m := metrics.New(prometheus.NewRegistry())
	return usecase.NewCartUsecase(carts, catalog, m, discardLogger()), carts, m
}

func TestCartUsecase_AddItem_NewCartThenMerge(t *testing.T) {
	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(product(1, "Apple", 120, 10), nil)
	uc, carts, m := newCartUsecase(catalog)

	out, err := uc.AddItem(context.Background(), usecase.AddItemInput{TenantID: tenant, ProductID: 1, Quantity: 2, CustomerHint: " walk-in "})
	require.NoError(t, err)
	require.NotEmpty(t, out.CartID)
	assert.Equal(t, out.CartID, out.Cart.ID)
	assert.Equal(t, "walk-in", out.Cart.CustomerHint)
	assert.Equal(t, int64(240), out.Cart.Total)

	out2, err := uc.AddItem(context.Background(), usecase.AddItemInput{CartID: out.CartID, TenantID: tenant, ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, out.CartID, out2.CartID)
	require.Len(t, out2.Cart.Lines, 1)
	assert.Equal(t, int64(5), out2.Cart.Lines[0].Quantity)
	assert.Equal(t, int64(600), out2.Cart.Total)

	assert.Equal(t, 1, carts.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartOps.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenCarts))
}

func TestCartUsecase_AddItem_Validation(t *testing.T) {
	uc, _, _ := newCartUsecase(new(CatalogMock))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'x'
	}

	cases := map[string]usecase.AddItemInput{
		"tenant":   {TenantID: 0, ProductID: 1, Quantity: 1},
		"product":  {TenantID: tenant, ProductID: 0, Quantity: 1},
		"quantity": {TenantID: tenant, ProductID: 1, Quantity: 0},
		"hint":     {TenantID: tenant, ProductID: 1, Quantity: 1, CustomerHint: string(long)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.AddItem(context.Background(), in)
			assertStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestCartUsecase_AddItem_ProductChecks(t *testing.T) {
	hidden := product(2, "Hidden", 100, 5)
	hidden.IsActive = false

	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(model.Product{}, repo.ErrNotFound)
	catalog.On("FindByID", mock.Anything, tenant, int64(2)).Return(hidden, nil)
	catalog.On("FindByID", mock.Anything, tenant, int64(3)).Return(product(3, "Few", 100, 2), nil)
	catalog.On("FindByID", mock.Anything, tenant, int64(4)).Return(model.Product{}, errors.New("connection reset"))
	uc, carts, _ := newCartUsecase(catalog)

	_, err := uc.AddItem(context.Background(), usecase.AddItemInput{TenantID: tenant, ProductID: 1, Quantity: 1})
	assertStatus(t, err, http.StatusNotFound)

	_, err = uc.AddItem(context.Background(), usecase.AddItemInput{TenantID: tenant, ProductID: 2, Quantity: 1})
	assertStatus(t, err, http.StatusNotFound)

	_, err = uc.AddItem(context.Background(), usecase.AddItemInput{TenantID: tenant, ProductID: 3, Quantity: 3})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.AddItem(context.Background(), usecase.AddItemInput{TenantID: tenant, ProductID: 4, Quantity: 1})
	assertStatus(t, err, http.StatusInternalServerError)

	assert.Equal(t, 0, carts.Len())
}

func TestCartUsecase_AddItem_StockCountsExistingQuantity(t *testing.T) {
	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(3)).Return(product(3, "Few", 100, 3), nil)
	uc, _, _ := newCartUsecase(catalog)

	out, err := uc.AddItem(context.Background(), usecase.AddItemInput{TenantID: tenant, ProductID: 3, Quantity: 2})
	require.NoError(t, err)

	_, err = uc.AddItem(context.Background(), usecase.AddItemInput{CartID: out.CartID, TenantID: tenant, ProductID: 3, Quantity: 2})
	assertStatus(t, err, http.StatusBadRequest)

	cart, err := uc.GetCart(context.Background(), tenant, out.CartID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
}

func TestCartUsecase_AddItem_HugeQuantityOnExistingLine(t *testing.T) {
	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(product(1, "Apple", 10, 5), nil)
	uc, _, _ := newCartUsecase(catalog)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, usecase.AddItemInput{TenantID: tenant, ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	_, err = uc.AddItem(ctx, usecase.AddItemInput{CartID: out.CartID, TenantID: tenant, ProductID: 1, Quantity: math.MaxInt64})
	assertStatus(t, err, http.StatusBadRequest)

	cart, err := uc.GetCart(ctx, tenant, out.CartID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(1), cart.Lines[0].Quantity)
	assert.Equal(t, int64(10), cart.Total)
}

func TestCartUsecase_UpdateQuantity_HiddenProduct(t *testing.T) {
	hidden := product(1, "Apple", 120, 10)
	hidden.IsActive = false

	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(product(1, "Apple", 120, 10), nil).Once()
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(hidden, nil)
	uc, _, _ := newCartUsecase(catalog)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, usecase.AddItemInput{TenantID: tenant, ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	_, err = uc.UpdateQuantity(ctx, tenant, out.CartID, 1, 3)
	assertStatus(t, err, http.StatusNotFound)

	cart, err := uc.GetCart(ctx, tenant, out.CartID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cart.Lines[0].Quantity)
}

func TestCartUsecase_UnknownCartIDStartsNewCart(t *testing.T) {
	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(product(1, "Apple", 120, 10), nil)
	uc, _, _ := newCartUsecase(catalog)

	out, err := uc.AddItem(context.Background(), usecase.AddItemInput{CartID: "stale-id", TenantID: tenant, ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.NotEqual(t, "stale-id", out.CartID)
}

func TestCartUsecase_UpdateRemoveClear(t *testing.T) {
	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(product(1, "Apple", 120, 10), nil)
	catalog.On("FindByID", mock.Anything, tenant, int64(2)).Return(product(2, "Pear", 80, 10), nil)
	uc, carts, _ := newCartUsecase(catalog)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, usecase.AddItemInput{TenantID: tenant, ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, usecase.AddItemInput{CartID: out.CartID, TenantID: tenant, ProductID: 2, Quantity: 1})
	require.NoError(t, err)

	cart, err := uc.UpdateQuantity(ctx, tenant, out.CartID, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4*120+80), cart.Total)

	_, err = uc.UpdateQuantity(ctx, tenant, out.CartID, 1, 11)
	assertStatus(t, err, http.StatusBadRequest)
	_, err = uc.UpdateQuantity(ctx, tenant, out.CartID, 1, 0)
	assertStatus(t, err, http.StatusBadRequest)
	_, err = uc.UpdateQuantity(ctx, tenant, "missing", 1, 1)
	assertStatus(t, err, http.StatusNotFound)

	cart, err = uc.RemoveItem(ctx, tenant, out.CartID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(80), cart.Total)

	_, err = uc.RemoveItem(ctx, tenant, out.CartID, 1)
	assertStatus(t, err, http.StatusNotFound)
	_, err = uc.RemoveItem(ctx, tenant, "missing", 1)
	assertStatus(t, err, http.StatusNotFound)

	require.NoError(t, uc.Clear(ctx, tenant, out.CartID))
	require.NoError(t, uc.Clear(ctx, tenant, out.CartID))
	assert.Equal(t, 0, carts.Len())

	_, err = uc.GetCart(ctx, tenant, out.CartID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_TenantIsolation(t *testing.T) {
	catalog := new(CatalogMock)
	catalog.On("FindByID", mock.Anything, tenant, int64(1)).Return(product(1, "Apple", 120, 10), nil)
	uc, _, _ := newCartUsecase(catalog)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, usecase.AddItemInput{TenantID: tenant, ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	_, err = uc.GetCart(ctx, 2, out.CartID)
	assertStatus(t, err, http.StatusNotFound)
	_, err = uc.RemoveItem(ctx, 2, out.CartID, 1)
	assertStatus(t, err, http.StatusNotFound)

	// 他テナントのClearは何もしない
	require.NoError(t, uc.Clear(ctx, 2, out.CartID))
	_, err = uc.GetCart(ctx, tenant, out.CartID)
	assert.NoError(t, err)
}
