package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidtn/order-read-api/internal/entity"
	"github.com/sidtn/order-read-api/internal/usecase"
)

type fakeCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = value
	c.ttls[key] = ttl
	c.sets++
	return nil
}

func (c *fakeCache) ClearByPrefix(_ context.Context, prefix string) (int, error) {
	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			delete(c.ttls, k)
			removed++
		}
	}
	return removed, nil
}

type fakeAggregator struct {
	full      *entity.OrderFull
	lite      *entity.Order
	err       error
	fullCalls int
	liteCalls int
}

func (a *fakeAggregator) FetchFull(context.Context, int64) (*entity.OrderFull, error) {
	a.fullCalls++
	return a.full, a.err
}

func (a *fakeAggregator) FetchLite(context.Context, int64) (*entity.Order, error) {
	a.liteCalls++
	return a.lite, a.err
}

func sampleOrder() entity.Order {
	return entity.Order{
		ID:        1,
		UserID:    10,
		AddressID: 20,
		Quantity:  2,
		Status:    "pending",
		Total:     decimal.RequireFromString("21.98"),
		CreatedAt: time.Date(2026, 1, 27, 12, 0, 0, 0, time.UTC),
	}
}

func sampleFull() *entity.OrderFull {
	order := sampleOrder()
	line2 := "Apt 4"
	return &entity.OrderFull{
		Order: order,
		User: entity.User{
			ID: 10, Email: "user0@example.com", FullName: "User 0",
			CreatedAt: order.CreatedAt,
		},
		Address: entity.Address{
			ID: 20, UserID: 10, Line1: "100 Main St", Line2: &line2,
			City: "Testville", State: "CA", PostalCode: "90000",
			CreatedAt: order.CreatedAt,
		},
		Products: []entity.OrderProduct{
			{OrderItemID: 100, ProductID: 1000, Name: "Product 0", SKU: "SKU000000",
				Price: decimal.RequireFromString("10.99"), Quantity: 1,
				UnitPrice: decimal.RequireFromString("10.99")},
			{OrderItemID: 101, ProductID: 1001, Name: "Product 1", SKU: "SKU000001",
				Price: decimal.RequireFromString("10.99"), Quantity: 1,
				UnitPrice: decimal.RequireFromString("10.99")},
		},
	}
}

func setup() (*usecase.ReadOrders, *fakeCache, *fakeAggregator) {
	cache := newFakeCache()
	agg := &fakeAggregator{}
	keys := usecase.NewKeyScheme("orders:test")
	uc := usecase.NewReadOrders(keys, cache, agg, 0)
	return uc, cache, agg
}

func TestGetFullMissThenHit(t *testing.T) {
	uc, cache, agg := setup()
	agg.full = sampleFull()

	first, err := uc.GetFull(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.fullCalls)
	assert.Equal(t, 1, cache.sets)

	second, err := uc.GetFull(context.Background(), 1)
	require.NoError(t, err)
	// Served from cache: the aggregator is not consulted again.
	assert.Equal(t, 1, agg.fullCalls)
	assert.Equal(t, 1, cache.sets)

	assert.Equal(t, first, second)
	require.Len(t, second.Products, 2)
	assert.True(t, second.Order.Total.Equal(decimal.RequireFromString("21.98")))
}

func TestGetLiteMissThenHit(t *testing.T) {
	uc, _, agg := setup()
	lite := sampleOrder()
	agg.lite = &lite

	first, err := uc.GetLite(context.Background(), 1)
	require.NoError(t, err)

	second, err := uc.GetLite(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.liteCalls)
	assert.Equal(t, first, second)
}

func TestFullAndLiteHeadersMatch(t *testing.T) {
	uc, _, agg := setup()
	full := sampleFull()
	agg.full = full
	lite := full.Order
	agg.lite = &lite

	gotFull, err := uc.GetFull(context.Background(), 1)
	require.NoError(t, err)
	gotLite, err := uc.GetLite(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, gotFull.Order, *gotLite)
}

func TestVariantsCachedIndependently(t *testing.T) {
	uc, cache, agg := setup()
	agg.full = sampleFull()
	lite := sampleOrder()
	agg.lite = &lite

	_, err := uc.GetFull(context.Background(), 1)
	require.NoError(t, err)
	_, err = uc.GetLite(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cache.entries, 2)

	// Dropping the full entry must not touch the lite one.
	delete(cache.entries, "orders:test:full:1")
	_, err = uc.GetLite(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.liteCalls)

	_, err = uc.GetFull(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.fullCalls)
}

func TestNotFoundIsNeverCached(t *testing.T) {
	uc, cache, agg := setup()

	_, err := uc.GetFull(context.Background(), 999999)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)

	_, err = uc.GetLite(context.Background(), 999999)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)

	assert.Empty(t, cache.entries)

	// Each retry goes back to the store since nothing was cached.
	_, _ = uc.GetFull(context.Background(), 999999)
	assert.Equal(t, 2, agg.fullCalls)
}

func TestCacheErrorPropagates(t *testing.T) {
	uc, cache, agg := setup()
	cache.getErr = usecase.ErrCacheUnavailable
	agg.full = sampleFull()

	_, err := uc.GetFull(context.Background(), 1)
	assert.ErrorIs(t, err, usecase.ErrCacheUnavailable)
	// No fail-open: the store is never consulted when the cache is down.
	assert.Equal(t, 0, agg.fullCalls)
}

func TestStoreErrorPropagates(t *testing.T) {
	uc, cache, agg := setup()
	agg.err = usecase.ErrStoreUnavailable

	_, err := uc.GetLite(context.Background(), 1)
	assert.ErrorIs(t, err, usecase.ErrStoreUnavailable)
	assert.Empty(t, cache.entries)
}

func TestConfiguredTTLReachesCache(t *testing.T) {
	cache := newFakeCache()
	agg := &fakeAggregator{}
	lite := sampleOrder()
	agg.lite = &lite
	keys := usecase.NewKeyScheme("orders:test")
	uc := usecase.NewReadOrders(keys, cache, agg, 5*time.Second)

	_, err := uc.GetLite(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cache.ttls["orders:test:lite:1"])
}
