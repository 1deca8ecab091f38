// Package calculator turns competitor offers into a recommended price.
//
// Everything here is pure: no I/O, no clocks, no shared state. Amounts are
// integer minor units, so the result is already on the smallest tradable
// unit; fractional inputs are rounded half-up where they enter the system
// (see domain.MoneyFromDecimal).
package calculator

import (
	"fmt"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
)

// Quote computes the price cfg's strategy recommends for a product that
// costs costPrice, given the competitor offers currently observed.
func Quote(costPrice domain.Money, offers []domain.CompetitorOffer, cfg domain.PricingConfig) (domain.PricingDecision, error) {
	cfg.CostPrice = costPrice
	if err := cfg.Validate(); err != nil {
		return domain.PricingDecision{}, apperrors.NewPricingError(domain.KindInvalidConfig, cfg.ProductID, err)
	}

	low, high := cfg.LowBound(), cfg.HighBound()
	if low > high {
		return domain.PricingDecision{}, apperrors.NewPricingError(domain.KindInvalidConfig, cfg.ProductID,
			fmt.Errorf("low bound %d exceeds high bound %d", low, high))
	}

	if len(offers) == 0 {
		return domain.PricingDecision{
			ProductID:        cfg.ProductID,
			RecommendedPrice: high,
			Rationale:        domain.RationaleNoCompetitors,
		}, nil
	}

	minPrice, err := MinCompetitorPrice(offers)
	if err != nil {
		return domain.PricingDecision{}, apperrors.NewPricingError(domain.KindInvalidConfig, cfg.ProductID, err)
	}

	raw, err := RawCandidate(minPrice, cfg)
	if err != nil {
		return domain.PricingDecision{}, apperrors.NewPricingError(domain.KindInvalidConfig, cfg.ProductID, err)
	}

	decision := domain.PricingDecision{
		ProductID:        cfg.ProductID,
		RecommendedPrice: raw,
		Rationale:        domain.RationaleNone,
	}
	switch {
	case raw < low:
		decision.RecommendedPrice = low
		decision.Rationale = domain.RationaleMinProfitClamp
	case raw > high:
		decision.RecommendedPrice = high
		decision.Rationale = domain.RationaleMaxProfitClamp
	}

	return decision, nil
}

// RawCandidate applies the strategy to the lowest competitor price, before
// any clamping. The result may be negative.
func RawCandidate(minCompetitorPrice domain.Money, cfg domain.PricingConfig) (domain.Money, error) {
	switch cfg.Strategy {
	case domain.StrategyBecomeFirst:
		return minCompetitorPrice - cfg.EffectiveStep(), nil
	case domain.StrategyEqualPrice:
		return minCompetitorPrice, nil
	}
	return 0, fmt.Errorf("unsupported strategy %s", cfg.Strategy)
}

// MinCompetitorPrice returns the lowest offer price. offers must not be empty.
func MinCompetitorPrice(offers []domain.CompetitorOffer) (domain.Money, error) {
	if len(offers) == 0 {
		return 0, fmt.Errorf("no competitor offers")
	}
	lowest := offers[0].Price
	for _, o := range offers {
		if o.Price < 0 {
			return 0, fmt.Errorf("negative price %d from seller %q", o.Price, o.SellerID)
		}
		if o.Price < lowest {
			lowest = o.Price
		}
	}
	return lowest, nil
}
