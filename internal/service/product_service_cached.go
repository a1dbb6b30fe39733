package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productCacheTTL    = 5 * time.Minute
	categoriesCacheKey = "categories"
)

// productServiceCached is a read-through cache in front of ProductService.
// Cache failures degrade to the wrapped service, never to an error.
type productServiceCached struct {
	inner  ProductService
	redis  *redis.Client
	logger *zap.Logger
}

func NewProductServiceCached(inner ProductService, redisClient *redis.Client, logger *zap.Logger) ProductService {
	return &productServiceCached{
		inner:  inner,
		redis:  redisClient,
		logger: logger,
	}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *productServiceCached) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productCacheKey(id)

	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}

		// poisoned entry, drop it and fall through
		s.redis.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		mylogger.Warn(
			ctx,
			s.logger,
			"Redis get failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	product, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := s.redis.Set(ctx, key, data, productCacheTTL).Err(); err != nil {
			mylogger.Warn(
				ctx,
				s.logger,
				"Redis set failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return product, nil
}

func (s *productServiceCached) Categories(ctx context.Context) ([]string, error) {
	cached, err := s.redis.Get(ctx, categoriesCacheKey).Result()
	if err == nil {
		var categories []string
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			return categories, nil
		}

		s.redis.Del(ctx, categoriesCacheKey)
	} else if !errors.Is(err, redis.Nil) {
		mylogger.Warn(
			ctx,
			s.logger,
			"Redis get failed",
			zap.String("key", categoriesCacheKey),
			zap.Error(err),
		)
	}

	categories, err := s.inner.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(categories); err == nil {
		s.redis.Set(ctx, categoriesCacheKey, data, productCacheTTL)
	}

	return categories, nil
}

func (s *productServiceCached) Create(ctx context.Context, input *CreateProductInput, image *ImageUpload) (*domain.Product, error) {
	product, err := s.inner.Create(ctx, input, image)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, categoriesCacheKey)

	return product, nil
}

func (s *productServiceCached) List(ctx context.Context, limit, offset int64, search string) (*ProductPage, error) {
	return s.inner.List(ctx, limit, offset, search)
}

func (s *productServiceCached) Update(ctx context.Context, id int64, input *domain.UpdateProductInput, image *ImageUpload) (*domain.Product, error) {
	product, err := s.inner.Update(ctx, id, input, image)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, productCacheKey(id), categoriesCacheKey)

	return product, nil
}

func (s *productServiceCached) UpdateDiscount(ctx context.Context, id int64, percent float64) (*domain.Product, error) {
	product, err := s.inner.UpdateDiscount(ctx, id, percent)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, productCacheKey(id))

	return product, nil
}

func (s *productServiceCached) Delete(ctx context.Context, id int64) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, productCacheKey(id), categoriesCacheKey)

	return nil
}

func (s *productServiceCached) invalidate(ctx context.Context, keys ...string) {
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Redis invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}
