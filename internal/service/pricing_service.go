package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlima-cursos/matricula-api/internal/models"
	"github.com/mlima-cursos/matricula-api/pkg/config"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
)

const paidCountCacheKey = "enrollments:paid_count"

type paidCountStore interface {
	CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int, error)
}

type countCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PricingService resolves the amount to charge for one enrollment attempt.
// The price depends on how many enrollments are already paid and on whether
// the promotional window is still open.
type PricingService struct {
	store  paidCountStore
	cache  countCache
	cfg    config.PricingConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewPricingService constructs the pricing service.
func NewPricingService(store paidCountStore, cache countCache, cfg config.PricingConfig, logger *zap.Logger) *PricingService {
	return &PricingService{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Quote returns the price for the requested modality, applying the coupon
// discount when the code is on the allow-list. Unknown coupons are ignored.
func (s *PricingService) Quote(ctx context.Context, modality models.Modality, coupon string) (float64, error) {
	tier, err := s.currentTier(ctx)
	if err != nil {
		return 0, err
	}

	amount := tier.WithoutMaterial
	if modality == models.ModalityWithMaterial {
		amount = tier.WithMaterial
	}

	if s.couponValid(coupon) {
		amount = amount * (1 - s.cfg.CouponDiscount/100)
	}

	return math.Round(amount*100) / 100, nil
}

// InvalidatePaidCount drops the cached paid counter. Called whenever an
// enrollment transitions into the paid state so the next quote recounts.
func (s *PricingService) InvalidatePaidCount(ctx context.Context) {
	if err := s.cache.Delete(ctx, paidCountCacheKey); err != nil {
		s.logger.Warn("paid_count_invalidate_failed", zap.Error(err))
	}
}

// currentTier resolves the price tier. The early-bird count takes priority
// over the promotion window; the tier-2 price only holds until the cutoff.
func (s *PricingService) currentTier(ctx context.Context) (config.TierPrices, error) {
	paid, err := s.paidCount(ctx)
	if err != nil {
		return config.TierPrices{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve price")
	}

	switch {
	case paid < s.cfg.EarlyBirdLimit:
		return s.cfg.Tier1, nil
	case !s.now().After(s.cfg.PromoCutoff):
		return s.cfg.Tier2, nil
	default:
		return s.cfg.Tier3, nil
	}
}

func (s *PricingService) paidCount(ctx context.Context) (int, error) {
	var cached int
	err := s.cache.Get(ctx, paidCountCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if err != appErrors.ErrCacheMiss {
		s.logger.Warn("paid_count_cache_read_failed", zap.Error(err))
	}

	count, err := s.store.CountByStatus(ctx, models.EnrollmentStatusPaid)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, paidCountCacheKey, count, s.cfg.PaidCountTTL); err != nil {
		s.logger.Warn("paid_count_cache_write_failed", zap.Error(err))
	}
	return count, nil
}

func (s *PricingService) couponValid(coupon string) bool {
	if coupon == "" {
		return false
	}
	for _, code := range s.cfg.CouponCodes {
		if strings.EqualFold(code, coupon) {
			return true
		}
	}
	return false
}
