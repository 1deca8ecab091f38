package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
	"repricer/internal/pricing/service"
)

// Mock implementations
type mockBatchRunner struct {
	RunPricingPassFunc func(ctx context.Context, productIDs []string, opts ...service.RunOption) (domain.BatchOutcome, error)
	SetActivationFunc  func(ctx context.Context, productIDs []string, active bool, opts ...service.RunOption) (domain.BatchOutcome, error)
}

func (m *mockBatchRunner) RunPricingPass(ctx context.Context, productIDs []string, opts ...service.RunOption) (domain.BatchOutcome, error) {
	return m.RunPricingPassFunc(ctx, productIDs, opts...)
}

func (m *mockBatchRunner) SetActivation(ctx context.Context, productIDs []string, active bool, opts ...service.RunOption) (domain.BatchOutcome, error) {
	return m.SetActivationFunc(ctx, productIDs, active, opts...)
}

type mockLister struct {
	ListActiveFunc func(ctx context.Context) ([]string, error)
}

func (m *mockLister) ListActive(ctx context.Context) ([]string, error) {
	return m.ListActiveFunc(ctx)
}

func outcomeFor(ids []string) domain.BatchOutcome {
	out := domain.BatchOutcome{RunID: "run-1", Total: len(ids), Succeeded: len(ids), PerProduct: map[string]domain.ProductOutcome{}}
	for _, id := range ids {
		out.PerProduct[id] = domain.ProductOutcome{ProductID: id, Status: domain.OutcomeOK}
	}
	return out
}

// Tests

func TestRunPricingPass_ExplicitIDs(t *testing.T) {
	var gotIDs []string
	runner := &mockBatchRunner{
		RunPricingPassFunc: func(ctx context.Context, productIDs []string, opts ...service.RunOption) (domain.BatchOutcome, error) {
			gotIDs = productIDs
			assert.Len(t, opts, 1)
			return outcomeFor(productIDs), nil
		},
	}
	lister := &mockLister{
		ListActiveFunc: func(ctx context.Context) ([]string, error) {
			t.Fatal("ListActive must not be called for explicit ids")
			return nil, nil
		},
	}

	uc := NewPricingUseCase(runner, lister, zap.NewNop(), 0)
	outcome, err := uc.RunPricingPass(context.Background(), PricingPassInput{ProductIDs: []string{"a", "b"}, Concurrency: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, gotIDs)
	assert.Equal(t, 2, outcome.Succeeded)
}

func TestRunPricingPass_AllActive(t *testing.T) {
	var gotIDs []string
	runner := &mockBatchRunner{
		RunPricingPassFunc: func(ctx context.Context, productIDs []string, opts ...service.RunOption) (domain.BatchOutcome, error) {
			gotIDs = productIDs
			return outcomeFor(productIDs), nil
		},
	}
	lister := &mockLister{
		ListActiveFunc: func(ctx context.Context) ([]string, error) {
			return []string{"x", "y", "z"}, nil
		},
	}

	outcome, err := NewPricingUseCase(runner, lister, zap.NewNop(), 0).
		RunPricingPass(context.Background(), PricingPassInput{AllActive: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, gotIDs)
	assert.Equal(t, 3, outcome.Total)
}

func TestRunPricingPass_ListActiveFails(t *testing.T) {
	lister := &mockLister{
		ListActiveFunc: func(ctx context.Context) ([]string, error) {
			return nil, errors.New("db down")
		},
	}

	_, err := NewPricingUseCase(&mockBatchRunner{}, lister, zap.NewNop(), 0).
		RunPricingPass(context.Background(), PricingPassInput{AllActive: true})

	var ie *apperrors.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, err.Error(), "db down")
}

func TestRunPricingPass_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input PricingPassInput
		field string
	}{
		{name: "no ids and not all active", input: PricingPassInput{}, field: "productIds"},
		{name: "ids with all active", input: PricingPassInput{ProductIDs: []string{"a"}, AllActive: true}, field: "productIds"},
		{name: "negative concurrency", input: PricingPassInput{ProductIDs: []string{"a"}, Concurrency: -1}, field: "concurrency"},
		{name: "batch too large", input: PricingPassInput{ProductIDs: []string{"a", "b", "c"}}, field: "productIds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewPricingUseCase(&mockBatchRunner{}, &mockLister{}, zap.NewNop(), 2)

			_, err := uc.RunPricingPass(context.Background(), tt.input)

			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok)
			require.NotEmpty(t, ve.Details)
			assert.Equal(t, tt.field, ve.Details[0].Field)
		})
	}
}

func TestRunPricingPass_PropagatesMalformedIDList(t *testing.T) {
	runner := &mockBatchRunner{
		RunPricingPassFunc: func(ctx context.Context, productIDs []string, opts ...service.RunOption) (domain.BatchOutcome, error) {
			return domain.BatchOutcome{}, service.ValidateProductIDs(productIDs)
		},
	}

	_, err := NewPricingUseCase(runner, &mockLister{}, zap.NewNop(), 0).
		RunPricingPass(context.Background(), PricingPassInput{ProductIDs: []string{"a", "a"}})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestSetActivation(t *testing.T) {
	var gotActive bool
	runner := &mockBatchRunner{
		SetActivationFunc: func(ctx context.Context, productIDs []string, active bool, opts ...service.RunOption) (domain.BatchOutcome, error) {
			gotActive = active
			return outcomeFor(productIDs), nil
		},
	}
	uc := NewPricingUseCase(runner, &mockLister{}, zap.NewNop(), 0)

	outcome, err := uc.SetActivation(context.Background(), ActivationInput{ProductIDs: []string{"a"}, Active: true})
	require.NoError(t, err)
	assert.True(t, gotActive)
	assert.Equal(t, 1, outcome.Succeeded)

	_, err = uc.SetActivation(context.Background(), ActivationInput{})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestQuote(t *testing.T) {
	uc := NewPricingUseCase(&mockBatchRunner{}, &mockLister{}, zap.NewNop(), 0)
	base := QuoteInput{
		CostPrice: 10000,
		Strategy:  domain.StrategyEqualPrice,
		MinProfit: 2000,
		MaxProfit: 8000,
		Step:      1,
	}

	t.Run("max profit clamp", func(t *testing.T) {
		in := base
		in.Offers = []domain.CompetitorOffer{{Price: 20000}, {Price: 19999}}

		decision, err := uc.Quote(in)

		require.NoError(t, err)
		assert.Equal(t, domain.Money(18000), decision.RecommendedPrice)
		assert.Equal(t, domain.RationaleMaxProfitClamp, decision.Rationale)
	})

	t.Run("min above max", func(t *testing.T) {
		in := base
		in.MinProfit = 9000

		_, err := uc.Quote(in)

		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "minProfit", ve.Details[0].Field)
	})

	t.Run("negative offer", func(t *testing.T) {
		in := base
		in.Offers = []domain.CompetitorOffer{{Price: 100}, {Price: -5}}

		_, err := uc.Quote(in)

		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "offers[1].price", ve.Details[0].Field)
	})
}
