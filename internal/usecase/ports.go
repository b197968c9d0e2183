package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sidtn/order-read-api/internal/entity"
)

var (
	// ErrOrderNotFound covers both an absent order id and an existing
	// order with zero items: the full view is built from an inner join,
	// so the two are indistinguishable at this layer.
	ErrOrderNotFound = errors.New("order not found")

	// ErrCacheUnavailable means the cache backend could not be reached.
	// It is propagated to the caller as-is; there is no fail-open
	// fallback to the relational store.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrStoreUnavailable means the relational backend could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// OrderReader is the single read contract every front end binds to.
type OrderReader interface {
	GetFull(ctx context.Context, orderID int64) (*entity.OrderFull, error)
	GetLite(ctx context.Context, orderID int64) (*entity.Order, error)
}

// OrderAggregator assembles aggregates from the relational store.
// A (nil, nil) return means the order was not found.
type OrderAggregator interface {
	FetchFull(ctx context.Context, orderID int64) (*entity.OrderFull, error)
	FetchLite(ctx context.Context, orderID int64) (*entity.Order, error)
}

// OrderCache is a byte-level key-value view of the cache backend.
// Get reports a miss as (nil, false, nil). A ttl of zero means the
// entry never expires.
type OrderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	ClearByPrefix(ctx context.Context, prefix string) (int, error)
}
