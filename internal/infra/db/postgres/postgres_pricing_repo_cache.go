package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
	"celebrity-subscription/internal/infra/metrics"
	red "celebrity-subscription/internal/infra/redis"
)

var _ repository.PricingRepository = (*pricingRepoCacheDecorator)(nil)

const pricingListKey = "pricing:all_active"

// pricingRepoCacheDecorator serves catalog reads from Redis. Cache failures
// fall through to the inner repository.
type pricingRepoCacheDecorator struct {
	inner repository.PricingRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewPricingRepoCacheDecorator(inner repository.PricingRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.PricingRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &pricingRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func pricingKey(tier model.Tier, duration model.DurationType) string {
	return fmt.Sprintf("pricing:%s:%s", tier, duration)
}

func (d *pricingRepoCacheDecorator) GetActive(ctx context.Context, tx repository.Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error) {
	key := pricingKey(tier, duration)
	if tx == nil {
		val, err := d.cache.Get(ctx, key)
		if err == nil {
			var e model.PriceEntry
			if json.Unmarshal([]byte(val), &e) == nil {
				metrics.IncCacheRequest("pricing", "hit")
				return &e, nil
			}
		} else if !errors.Is(err, red.Nil) {
			d.log.Warn().Err(err).Str("key", key).Msg("pricing cache read failed")
		}
		metrics.IncCacheRequest("pricing", "miss")
	}

	e, err := d.inner.GetActive(ctx, tx, tier, duration)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(e); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return e, nil
}

func (d *pricingRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PriceEntry, error) {
	if tx == nil {
		val, err := d.cache.Get(ctx, pricingListKey)
		if err == nil {
			var out []*model.PriceEntry
			if json.Unmarshal([]byte(val), &out) == nil {
				metrics.IncCacheRequest("pricing_list", "hit")
				return out, nil
			}
		} else if !errors.Is(err, red.Nil) {
			d.log.Warn().Err(err).Msg("pricing list cache read failed")
		}
		metrics.IncCacheRequest("pricing_list", "miss")
	}

	out, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		if b, err := json.Marshal(out); err == nil {
			_ = d.cache.Set(ctx, pricingListKey, b, d.ttl)
		}
	}
	return out, nil
}

// Write operations must invalidate the cache
func (d *pricingRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, e *model.PriceEntry) error {
	if err := d.inner.Upsert(ctx, tx, e); err != nil {
		return err
	}
	if err := d.cache.Del(ctx, pricingKey(e.Tier, e.Duration), pricingListKey); err != nil {
		d.log.Warn().Err(err).Msg("pricing cache invalidation failed")
	}
	return nil
}
