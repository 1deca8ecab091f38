package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
	"repricer/internal/pricing/calculator"
)

type BotSettingsStore interface {
	Get(ctx context.Context, productID string) (*domain.PricingConfig, error)
	SetActive(ctx context.Context, productID string, active bool) error
}

// CompetitorFeed must return an empty slice, not an error, when a product
// has no competitors.
type CompetitorFeed interface {
	Fetch(ctx context.Context, productID string) ([]domain.CompetitorOffer, error)
}

type PriceApplier interface {
	Apply(ctx context.Context, productID string, price domain.Money) error
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Options bound every call made while a product lock is held. The lock lease
// must outlive StoreTimeout + FetchTimeout + ApplyTimeout.
type Options struct {
	Workers      int
	StoreTimeout time.Duration
	FetchTimeout time.Duration
	ApplyTimeout time.Duration
}

const (
	defaultWorkers = 8
	defaultTimeout = 3 * time.Second
)

// Orchestrator runs pricing passes and activation toggles over batches of
// products. Each product is processed independently: its failure is recorded
// in the batch outcome and never stops the others.
type Orchestrator struct {
	store    BotSettingsStore
	feed     CompetitorFeed
	applier  PriceApplier
	locker   Locker
	logger   *zap.Logger
	opts     Options
	newRunID func() string
}

func NewOrchestrator(
	store BotSettingsStore,
	feed CompetitorFeed,
	applier PriceApplier,
	locker Locker,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultTimeout
	}
	if opts.ApplyTimeout <= 0 {
		opts.ApplyTimeout = defaultTimeout
	}
	return &Orchestrator{
		store:    store,
		feed:     feed,
		applier:  applier,
		locker:   locker,
		logger:   logger,
		opts:     opts,
		newRunID: uuid.NewString,
	}
}

type runSettings struct {
	workers int
}

type RunOption func(*runSettings)

// WithConcurrency overrides the worker pool size for one run. Values below 1
// keep the configured default.
func WithConcurrency(n int) RunOption {
	return func(s *runSettings) {
		if n > 0 {
			s.workers = n
		}
	}
}

// RunPricingPass prices every product in productIDs. The returned error is
// non-nil only for a malformed id list, in which case no work was started.
func (o *Orchestrator) RunPricingPass(ctx context.Context, productIDs []string, opts ...RunOption) (domain.BatchOutcome, error) {
	return o.run(ctx, domain.OperationPricingPass, productIDs, opts, o.priceProduct)
}

// SetActivation flips the bot flag of every product in productIDs.
func (o *Orchestrator) SetActivation(ctx context.Context, productIDs []string, active bool, opts ...RunOption) (domain.BatchOutcome, error) {
	return o.run(ctx, domain.OperationSetActivation, productIDs, opts, func(ctx context.Context, logger *zap.Logger, productID string) domain.ProductOutcome {
		return o.activateProduct(ctx, logger, productID, active)
	})
}

type productPipeline func(ctx context.Context, logger *zap.Logger, productID string) domain.ProductOutcome

func (o *Orchestrator) run(
	ctx context.Context,
	op domain.BatchOperation,
	productIDs []string,
	opts []RunOption,
	pipeline productPipeline,
) (domain.BatchOutcome, error) {
	if err := ValidateProductIDs(productIDs); err != nil {
		return domain.BatchOutcome{}, err
	}

	settings := runSettings{workers: o.opts.Workers}
	for _, opt := range opts {
		opt(&settings)
	}

	runID := o.newRunID()
	logger := o.logger.With(zap.String("runId", runID), zap.String("operation", string(op)))
	logger.Info("batch started", zap.Int("productCount", len(productIDs)), zap.Int("workers", settings.workers))

	rec := newRecorder(runID, op, len(productIDs))
	sem := semaphore.NewWeighted(int64(settings.workers))
	var g errgroup.Group

	for i, productID := range productIDs {
		if err := acquire(ctx, sem); err != nil {
			for _, rest := range productIDs[i:] {
				rec.record(skipped(rest, domain.SkipCancelled))
			}
			logger.Warn("batch cancelled, remaining products skipped", zap.Int("skipped", len(productIDs)-i), zap.Error(err))
			break
		}

		g.Go(func() error {
			defer sem.Release(1)
			rec.record(pipeline(ctx, logger.With(zap.String("productId", productID)), productID))
			return nil
		})
	}
	_ = g.Wait()

	outcome := rec.result()
	logger.Info("batch finished",
		zap.Int("total", outcome.Total),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
		zap.Int("skipped", outcome.Skipped),
	)
	return outcome, nil
}

// acquire takes a worker slot unless ctx is done. Acquire may succeed on an
// already-cancelled context, so ctx is checked on both sides.
func acquire(ctx context.Context, sem *semaphore.Weighted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		sem.Release(1)
		return err
	}
	return nil
}

func (o *Orchestrator) priceProduct(ctx context.Context, logger *zap.Logger, productID string) domain.ProductOutcome {
	unlock, err := o.locker.Lock(ctx, productID)
	if err != nil {
		if ctx.Err() != nil {
			return skipped(productID, domain.SkipCancelled)
		}
		return o.fail(logger, productID, domain.KindLockUnavailable, err)
	}
	defer unlock()

	storeCtx, cancel := context.WithTimeout(ctx, o.opts.StoreTimeout)
	cfg, err := o.store.Get(storeCtx, productID)
	cancel()
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			logger.Debug("product has no bot settings")
			return skipped(productID, domain.SkipNotFound)
		}
		return o.fail(logger, productID, domain.KindStoreUnavailable, err)
	}
	if !cfg.BotActive {
		return skipped(productID, domain.SkipInactive)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
	offers, err := o.feed.Fetch(fetchCtx, productID)
	cancel()
	if err != nil {
		return o.fail(logger, productID, domain.KindFeedUnavailable, err)
	}

	decision, err := calculator.Quote(cfg.CostPrice, offers, *cfg)
	if err != nil {
		return o.fail(logger, productID, domain.KindInvalidConfig, err)
	}

	applyCtx, cancel := context.WithTimeout(ctx, o.opts.ApplyTimeout)
	err = o.applier.Apply(applyCtx, productID, decision.RecommendedPrice)
	cancel()
	if err != nil {
		return o.fail(logger, productID, domain.KindApplyFailed, err)
	}

	logger.Info("price applied",
		zap.Int64("price", int64(decision.RecommendedPrice)),
		zap.String("rationale", string(decision.Rationale)),
		zap.Int("offerCount", len(offers)),
	)
	return domain.ProductOutcome{
		ProductID: productID,
		Status:    domain.OutcomeOK,
		Decision:  &decision,
	}
}

func (o *Orchestrator) activateProduct(ctx context.Context, logger *zap.Logger, productID string, active bool) domain.ProductOutcome {
	unlock, err := o.locker.Lock(ctx, productID)
	if err != nil {
		if ctx.Err() != nil {
			return skipped(productID, domain.SkipCancelled)
		}
		return o.fail(logger, productID, domain.KindLockUnavailable, err)
	}
	defer unlock()

	storeCtx, cancel := context.WithTimeout(ctx, o.opts.StoreTimeout)
	err = o.store.SetActive(storeCtx, productID, active)
	cancel()
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return skipped(productID, domain.SkipNotFound)
		}
		return o.fail(logger, productID, domain.KindStoreUnavailable, err)
	}

	logger.Info("bot activation updated", zap.Bool("active", active))
	return domain.ProductOutcome{ProductID: productID, Status: domain.OutcomeOK}
}

func (o *Orchestrator) fail(logger *zap.Logger, productID string, kind domain.ErrorKind, err error) domain.ProductOutcome {
	var perr *apperrors.PricingError
	if !errors.As(err, &perr) || perr.Kind != kind {
		perr = apperrors.NewPricingError(kind, productID, err)
	}
	logger.Warn("product failed", zap.String("errorKind", string(kind)), zap.Error(err))
	return domain.ProductOutcome{
		ProductID: productID,
		Status:    domain.OutcomeFailed,
		ErrorKind: kind,
		Message:   perr.Error(),
	}
}

func skipped(productID string, reason domain.SkipReason) domain.ProductOutcome {
	return domain.ProductOutcome{
		ProductID:  productID,
		Status:     domain.OutcomeSkipped,
		SkipReason: reason,
	}
}

// ValidateProductIDs rejects lists with blank or repeated ids.
func ValidateProductIDs(productIDs []string) error {
	var details []apperrors.ValidationDetail
	seen := make(map[string]struct{}, len(productIDs))

	for idx, id := range productIDs {
		field := fmt.Sprintf("productIds[%d]", idx)
		if id == "" {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: "productId must not be empty"})
			continue
		}
		if _, dup := seen[id]; dup {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: "productId must not be duplicated"})
		}
		seen[id] = struct{}{}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product id list", details...)
	}
	return nil
}
