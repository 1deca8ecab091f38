package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
	"repricer/internal/pricing/usecase"
)

const (
	// QueueDefault is the queue pricing tasks are enqueued on.
	QueueDefault = "default"
	// TaskTypeRunPass runs one pricing pass in the background.
	TaskTypeRunPass = "pricing:run_pass"
)

type RunPassPayload struct {
	ProductIDs  []string `json:"productIds,omitempty"`
	AllActive   bool     `json:"allActive"`
	Concurrency int      `json:"concurrency,omitempty"`
}

func NewRunPassTask(payload RunPassPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRunPass, data), nil
}

type PassRunner interface {
	RunPricingPass(ctx context.Context, in usecase.PricingPassInput) (*domain.BatchOutcome, error)
}

type RunPassHandler struct {
	runner PassRunner
	logger *zap.Logger
}

func NewRunPassHandler(runner PassRunner, logger *zap.Logger) *RunPassHandler {
	return &RunPassHandler{
		runner: runner,
		logger: logger.With(zap.String("job", TaskTypeRunPass)),
	}
}

// Handle runs the pass described by the task payload. Per-product failures
// are part of a normal outcome and do not fail the task; only a pass that
// could not start is reported back to the queue.
func (h *RunPassHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RunPassPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("invalid task payload", zap.Error(err))
		return fmt.Errorf("decoding %s payload: %v: %w", TaskTypeRunPass, err, asynq.SkipRetry)
	}

	outcome, err := h.runner.RunPricingPass(ctx, usecase.PricingPassInput{
		ProductIDs:  payload.ProductIDs,
		AllActive:   payload.AllActive,
		Concurrency: payload.Concurrency,
	})
	if err != nil {
		if _, ok := apperrors.IsValidationError(err); ok {
			h.logger.Error("rejected pricing pass task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		h.logger.Error("pricing pass task failed", zap.Error(err))
		return err
	}

	h.logger.Info("pricing pass task completed",
		zap.String("runId", outcome.RunID),
		zap.Int("total", outcome.Total),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
		zap.Int("skipped", outcome.Skipped),
	)
	return nil
}
