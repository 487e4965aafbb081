package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const priceCacheTTL = 60 * time.Second

// PricingService is the price-catalog lookup, Redis-cached for the hot
// barcode/SKU path. The cache is best-effort: a missing or failing Redis
// falls through to the database.
type PricingService interface {
	BySKU(ctx context.Context, sku string) (*dto.PriceResponse, error)
}

type pricingService struct {
	productRepo repository.ProductRepository
	rdb         *redis.Client
}

func NewPricingService(productRepo repository.ProductRepository, rdb *redis.Client) PricingService {
	return &pricingService{productRepo: productRepo, rdb: rdb}
}

func (s *pricingService) BySKU(ctx context.Context, sku string) (*dto.PriceResponse, error) {
	cacheKey := "price:sku:" + sku

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.PriceResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, ErrProductNotFound
	}
	resp := &dto.PriceResponse{
		ProductID: p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		TaxRate:   p.TaxRate,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, priceCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("sku", sku).Msg("pricing: cache write failed")
			}
		}
	}
	return resp, nil
}
