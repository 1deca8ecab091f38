package usecase

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
	"repricer/internal/pricing/calculator"
	"repricer/internal/pricing/service"
)

type BatchRunner interface {
	RunPricingPass(ctx context.Context, productIDs []string, opts ...service.RunOption) (domain.BatchOutcome, error)
	SetActivation(ctx context.Context, productIDs []string, active bool, opts ...service.RunOption) (domain.BatchOutcome, error)
}

type ActiveProductLister interface {
	ListActive(ctx context.Context) ([]string, error)
}

type PricingPassInput struct {
	ProductIDs  []string
	AllActive   bool
	Concurrency int
}

type ActivationInput struct {
	ProductIDs  []string
	Active      bool
	Concurrency int
}

type QuoteInput struct {
	CostPrice domain.Money
	Strategy  domain.Strategy
	MinProfit domain.Money
	MaxProfit domain.Money
	Step      domain.Money
	Offers    []domain.CompetitorOffer
}

// Validate checks that exactly one product selection mode is used.
func (in PricingPassInput) Validate() error {
	var details []apperrors.ValidationDetail
	switch {
	case in.AllActive && len(in.ProductIDs) > 0:
		details = append(details, apperrors.ValidationDetail{Field: "productIds", Message: "productIds must be empty when allActive is set"})
	case !in.AllActive && len(in.ProductIDs) == 0:
		details = append(details, apperrors.ValidationDetail{Field: "productIds", Message: "productIds is required unless allActive is set"})
	}
	if in.Concurrency < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "concurrency", Message: "concurrency must not be negative"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid pricing pass request", details...)
	}
	return nil
}

const defaultMaxBatchSize = 1000

type PricingUseCase struct {
	runner       BatchRunner
	lister       ActiveProductLister
	logger       *zap.Logger
	maxBatchSize int
}

func NewPricingUseCase(runner BatchRunner, lister ActiveProductLister, logger *zap.Logger, maxBatchSize int) *PricingUseCase {
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}
	return &PricingUseCase{
		runner:       runner,
		lister:       lister,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
}

// RunPricingPass prices either the given products or, with AllActive, every
// product whose bot is currently on.
func (uc *PricingUseCase) RunPricingPass(ctx context.Context, in PricingPassInput) (*domain.BatchOutcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ids := in.ProductIDs
	if in.AllActive {
		active, err := uc.lister.ListActive(ctx)
		if err != nil {
			uc.logger.Error("failed to list active products", zap.Error(err))
			return nil, apperrors.NewInternalError("failed to list active products", err)
		}
		ids = active
	} else if len(ids) > uc.maxBatchSize {
		return nil, apperrors.NewValidationError("invalid pricing pass request", apperrors.ValidationDetail{
			Field:   "productIds",
			Message: "productIds exceeds the maximum batch size",
		})
	}

	uc.logger.Info("pricing pass requested", zap.Int("productCount", len(ids)), zap.Bool("allActive", in.AllActive))

	outcome, err := uc.runner.RunPricingPass(ctx, ids, service.WithConcurrency(in.Concurrency))
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (uc *PricingUseCase) SetActivation(ctx context.Context, in ActivationInput) (*domain.BatchOutcome, error) {
	var details []apperrors.ValidationDetail
	if len(in.ProductIDs) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "productIds", Message: "productIds must not be empty"})
	}
	if len(in.ProductIDs) > uc.maxBatchSize {
		details = append(details, apperrors.ValidationDetail{Field: "productIds", Message: "productIds exceeds the maximum batch size"})
	}
	if in.Concurrency < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "concurrency", Message: "concurrency must not be negative"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid activation request", details...)
	}

	uc.logger.Info("activation requested", zap.Int("productCount", len(in.ProductIDs)), zap.Bool("active", in.Active))

	outcome, err := uc.runner.SetActivation(ctx, in.ProductIDs, in.Active, service.WithConcurrency(in.Concurrency))
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Quote previews the calculator for an ad-hoc configuration. Nothing is read
// from or written to the store.
func (uc *PricingUseCase) Quote(in QuoteInput) (*domain.PricingDecision, error) {
	cfg := domain.PricingConfig{
		Strategy:  in.Strategy,
		MinProfit: in.MinProfit,
		MaxProfit: in.MaxProfit,
		Step:      in.Step,
	}

	for idx, offer := range in.Offers {
		if offer.Price < 0 {
			return nil, apperrors.NewValidationError("invalid quote request", apperrors.ValidationDetail{
				Field:   "offers[" + strconv.Itoa(idx) + "].price",
				Message: "price must be non-negative",
			})
		}
	}

	decision, err := calculator.Quote(in.CostPrice, in.Offers, cfg)
	if err != nil {
		var ce *domain.ConfigError
		if errors.As(err, &ce) {
			return nil, apperrors.NewValidationError("invalid quote request", apperrors.ValidationDetail{
				Field:   ce.Field,
				Message: ce.Field + " " + ce.Reason,
			})
		}
		return nil, apperrors.NewValidationError("invalid quote request", apperrors.ValidationDetail{
			Field:   "config",
			Message: err.Error(),
		})
	}
	return &decision, nil
}
