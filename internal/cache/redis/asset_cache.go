package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stellar-copytrade-lab/internal/discovery"
	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// DefaultAssetTTL bounds how long a domain's asset list is trusted.
const DefaultAssetTTL = time.Hour

// AssetCache stores stellar.toml discovery results as JSON strings.
//
// Key schema:
//
//	copytrade:domain_assets:{domain}
type AssetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ discovery.AssetCache = (*AssetCache)(nil)

// NewAssetCache creates an AssetCache. A non-positive ttl uses DefaultAssetTTL.
func NewAssetCache(rdb *redis.Client, ttl time.Duration) *AssetCache {
	if ttl <= 0 {
		ttl = DefaultAssetTTL
	}
	return &AssetCache{rdb: rdb, ttl: ttl}
}

func domainAssetsKey(homeDomain string) string { return "copytrade:domain_assets:" + homeDomain }

// Get returns storage.ErrNotFound when the domain is not cached.
func (c *AssetCache) Get(ctx context.Context, homeDomain string) ([]domain.IssuedAssetRef, error) {
	data, err := c.rdb.Get(ctx, domainAssetsKey(homeDomain)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get assets %s: %w", homeDomain, err)
	}

	var assets []domain.IssuedAssetRef
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal assets %s: %w", homeDomain, err)
	}
	return assets, nil
}

// Set stores the assets with the cache TTL.
func (c *AssetCache) Set(ctx context.Context, homeDomain string, assets []domain.IssuedAssetRef) error {
	if assets == nil {
		assets = []domain.IssuedAssetRef{}
	}
	data, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("redis: marshal assets %s: %w", homeDomain, err)
	}
	if err := c.rdb.Set(ctx, domainAssetsKey(homeDomain), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set assets %s: %w", homeDomain, err)
	}
	return nil
}
