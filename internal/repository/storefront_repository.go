// Package repository serves storefront reads. The lookbook backend is
// the source of truth; Redis sits in front of it so public pages do not
// hammer the backend on every render.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"lookbook-service/internal/catalog"
	"lookbook-service/internal/clients"
	"lookbook-service/internal/models"
)

const (
	profileCacheTTL = 5 * time.Minute
	catalogCacheTTL = 2 * time.Minute
	looksCacheTTL   = 2 * time.Minute
)

// ProductSource lists backend products for a storefront
type ProductSource interface {
	List(ctx context.Context, opts clients.ListProductsOptions) ([]models.Product, *models.PaginationInfo, error)
}

// PostSource reads backend posts for a storefront
type PostSource interface {
	ListByUsername(ctx context.Context, username string) ([]models.Ootd, error)
	GetByID(ctx context.Context, id string) (*models.Ootd, error)
}

// ProfileSource resolves storefront handles
type ProfileSource interface {
	GetInfluencerByHandle(ctx context.Context, handle string) (*models.Influencer, error)
}

// StorefrontRepository reads storefront data through the cache. A nil or
// unreachable Redis degrades to direct backend reads; the storefront
// never fails because the cache did.
type StorefrontRepository struct {
	products ProductSource
	posts    PostSource
	profiles ProfileSource
	redis    *redis.Client
	pageSize int
}

// NewStorefrontRepository creates a storefront repository. redisClient
// may be nil to disable caching.
func NewStorefrontRepository(products ProductSource, posts PostSource, profiles ProfileSource, redisClient *redis.Client, pageSize int) *StorefrontRepository {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &StorefrontRepository{
		products: products,
		posts:    posts,
		profiles: profiles,
		redis:    redisClient,
		pageSize: pageSize,
	}
}

func profileCacheKey(handle string) string { return fmt.Sprintf("storefront:profile:%s", handle) }
func catalogCacheKey(handle string) string { return fmt.Sprintf("storefront:catalog:%s", handle) }
func looksCacheKey(handle string) string   { return fmt.Sprintf("storefront:looks:%s", handle) }

// Profile resolves a storefront handle to its influencer
func (r *StorefrontRepository) Profile(ctx context.Context, handle string) (*models.Influencer, error) {
	key := profileCacheKey(handle)

	var cached models.Influencer
	if r.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	influencer, err := r.profiles.GetInfluencerByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if influencer != nil {
		r.cacheSet(ctx, key, influencer, profileCacheTTL)
	}
	return influencer, nil
}

// Catalog returns the normalized storefront catalog of a handle. The
// cache holds the normalized entries, not the raw backend page, so a hit
// skips normalization too.
func (r *StorefrontRepository) Catalog(ctx context.Context, handle string) ([]catalog.Entry, error) {
	key := catalogCacheKey(handle)

	var cached []catalog.Entry
	if r.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	products, _, err := r.products.List(ctx, clients.ListProductsOptions{
		Username: handle,
		PageSize: r.pageSize,
	})
	if err != nil {
		return nil, err
	}

	entries := catalog.FromProducts(products)
	r.cacheSet(ctx, key, entries, catalogCacheTTL)
	return entries, nil
}

// Looks returns the public posts of a handle
func (r *StorefrontRepository) Looks(ctx context.Context, handle string) ([]models.Ootd, error) {
	key := looksCacheKey(handle)

	var cached []models.Ootd
	if r.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	looks, err := r.posts.ListByUsername(ctx, handle)
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, key, looks, looksCacheTTL)
	return looks, nil
}

// Look fetches one post by id, uncached: detail pages carry view counts
// that should stay fresh.
func (r *StorefrontRepository) Look(ctx context.Context, id string) (*models.Ootd, error) {
	return r.posts.GetByID(ctx, id)
}

// InvalidateHandle drops every cached view of a storefront. Called after
// any dashboard mutation so the public pages converge quickly.
func (r *StorefrontRepository) InvalidateHandle(ctx context.Context, handle string) {
	if r.redis == nil || handle == "" {
		return
	}
	keys := []string{profileCacheKey(handle), catalogCacheKey(handle), looksCacheKey(handle)}
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).WithField("handle", handle).Warn("failed to invalidate storefront cache")
	}
}

func (r *StorefrontRepository) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if r.redis == nil {
		return false
	}
	raw, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Warn("storefront cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.WithError(err).WithField("key", key).Warn("dropping corrupt storefront cache entry")
		r.redis.Del(ctx, key)
		return false
	}
	return true
}

func (r *StorefrontRepository) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("storefront cache write failed")
	}
}
