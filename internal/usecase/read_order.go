package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sidtn/order-read-api/internal/entity"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_cache_lookups_total",
		Help: "Order cache lookups by variant and outcome",
	},
	[]string{"variant", "outcome"},
)

// ReadOrders serves cache-aside order reads. A hit is returned without
// consulting the store; a miss queries the store and populates the
// cache. Not-found results are never cached. Concurrent misses for the
// same id are not coordinated: both may query the store and both may
// write the cache, which is harmless because the writes are value-equal
// and Set is last-write-wins.
type ReadOrders struct {
	keys  KeyScheme
	cache OrderCache
	agg   OrderAggregator
	ttl   time.Duration
}

func NewReadOrders(keys KeyScheme, cache OrderCache, agg OrderAggregator, ttl time.Duration) *ReadOrders {
	return &ReadOrders{keys: keys, cache: cache, agg: agg, ttl: ttl}
}

func (uc *ReadOrders) GetFull(ctx context.Context, orderID int64) (*entity.OrderFull, error) {
	key := uc.keys.Key(orderID, VariantFull)

	cached, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		cacheLookups.WithLabelValues(string(VariantFull), "hit").Inc()
		var full entity.OrderFull
		if err := json.Unmarshal(cached, &full); err != nil {
			return nil, fmt.Errorf("decode cached full order %d: %w", orderID, err)
		}
		return &full, nil
	}
	cacheLookups.WithLabelValues(string(VariantFull), "miss").Inc()

	full, err := uc.agg.FetchFull(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, ErrOrderNotFound
	}

	if err := uc.store(ctx, key, full); err != nil {
		return nil, err
	}
	return full, nil
}

func (uc *ReadOrders) GetLite(ctx context.Context, orderID int64) (*entity.Order, error) {
	key := uc.keys.Key(orderID, VariantLite)

	cached, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		cacheLookups.WithLabelValues(string(VariantLite), "hit").Inc()
		var lite entity.Order
		if err := json.Unmarshal(cached, &lite); err != nil {
			return nil, fmt.Errorf("decode cached lite order %d: %w", orderID, err)
		}
		return &lite, nil
	}
	cacheLookups.WithLabelValues(string(VariantLite), "miss").Inc()

	lite, err := uc.agg.FetchLite(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if lite == nil {
		return nil, ErrOrderNotFound
	}

	if err := uc.store(ctx, key, lite); err != nil {
		return nil, err
	}
	return lite, nil
}

func (uc *ReadOrders) store(ctx context.Context, key string, aggregate any) error {
	payload, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return uc.cache.Set(ctx, key, payload, uc.ttl)
}

var _ OrderReader = (*ReadOrders)(nil)
