package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/repository"
)

// PricingUseCase is the pricing catalog.
type PricingUseCase interface {
	// PriceFor returns the active price for the pair. A missing or inactive
	// row is not an error: the price is zero and found is false.
	PriceFor(ctx context.Context, tier model.Tier, duration model.DurationType) (price decimal.Decimal, found bool, err error)

	// List returns all active rows.
	List(ctx context.Context) ([]*model.PriceEntry, error)

	// Set creates or replaces the price of a pair.
	Set(ctx context.Context, tier, duration string, price decimal.Decimal) (*model.PriceEntry, error)
}

var _ PricingUseCase = (*pricingUC)(nil)

type pricingUC struct {
	prices repository.PricingRepository
	onMiss func(tier, duration string)
	log    *zerolog.Logger
}

type PricingOption func(*pricingUC)

// WithMissCounter calls fn for every lookup that resolves to no active price.
func WithMissCounter(fn func(tier, duration string)) PricingOption {
	return func(p *pricingUC) { p.onMiss = fn }
}

// NewPricingUseCase constructs the catalog over the pricing repository.
func NewPricingUseCase(prices repository.PricingRepository, logger *zerolog.Logger, opts ...PricingOption) PricingUseCase {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	p := &pricingUC{prices: prices, log: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pricingUC) PriceFor(ctx context.Context, tier model.Tier, duration model.DurationType) (decimal.Decimal, bool, error) {
	e, err := p.prices.GetActive(ctx, repository.NoTX, tier, duration)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.miss(tier, duration)
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("pricing lookup: %w", err)
	}
	if !e.IsActive {
		p.miss(tier, duration)
		return decimal.Zero, false, nil
	}
	return e.Price, true, nil
}

func (p *pricingUC) miss(tier model.Tier, duration model.DurationType) {
	p.log.Warn().
		Str("tier", string(tier)).
		Str("duration", string(duration)).
		Msg("pricing catalog miss; expected amount resolves to 0")
	if p.onMiss != nil {
		p.onMiss(string(tier), string(duration))
	}
}

func (p *pricingUC) List(ctx context.Context) ([]*model.PriceEntry, error) {
	return p.prices.ListActive(ctx, repository.NoTX)
}

func (p *pricingUC) Set(ctx context.Context, tier, duration string, price decimal.Decimal) (*model.PriceEntry, error) {
	t, err := model.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	d, err := model.ParseDuration(duration)
	if err != nil {
		return nil, err
	}
	if err := model.CheckAmount("price", price); err != nil {
		return nil, err
	}
	e, err := model.NewPriceEntry(t, d, price)
	if err != nil {
		return nil, err
	}
	if err := p.prices.Upsert(ctx, repository.NoTX, e); err != nil {
		return nil, fmt.Errorf("save price: %w", err)
	}
	return e, nil
}
