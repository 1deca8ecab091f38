package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"repricer/internal/domain"
	"repricer/internal/dto"
	apperrors "repricer/internal/errors"
	"repricer/internal/pricing/jobs"
	"repricer/internal/pricing/usecase"
)

type PricingUseCase interface {
	RunPricingPass(ctx context.Context, in usecase.PricingPassInput) (*domain.BatchOutcome, error)
	SetActivation(ctx context.Context, in usecase.ActivationInput) (*domain.BatchOutcome, error)
	Quote(in usecase.QuoteInput) (*domain.PricingDecision, error)
}

type PassEnqueuer interface {
	EnqueueRunPass(ctx context.Context, payload jobs.RunPassPayload) (string, error)
}

type PricingController struct {
	useCase     PricingUseCase
	enqueuer    PassEnqueuer
	validate    *validator.Validate
	logger      *zap.Logger
	minorDigits int32
}

// NewPricingController builds the controller. enqueuer may be nil, in which
// case async pass requests are refused.
func NewPricingController(useCase PricingUseCase, enqueuer PassEnqueuer, logger *zap.Logger, minorDigits int32) *PricingController {
	return &PricingController{
		useCase:     useCase,
		enqueuer:    enqueuer,
		validate:    dto.NewValidator(),
		logger:      logger,
		minorDigits: minorDigits,
	}
}

func (c *PricingController) RunPricingPass(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PricingPassRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	input := usecase.PricingPassInput{
		ProductIDs:  req.ProductIDs,
		AllActive:   req.AllActive,
		Concurrency: req.Concurrency,
	}

	if req.Async {
		c.enqueuePass(w, r, traceID, logger, input)
		return
	}

	outcome, err := c.useCase.RunPricingPass(r.Context(), input)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOutcome(w, traceID, outcome)
}

func (c *PricingController) enqueuePass(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger, input usecase.PricingPassInput) {
	if c.enqueuer == nil {
		c.writeErrorResponse(w, traceID, http.StatusServiceUnavailable, "JOBS_DISABLED", "background jobs are not enabled")
		return
	}
	if err := input.Validate(); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	taskID, err := c.enqueuer.EnqueueRunPass(r.Context(), jobs.RunPassPayload{
		ProductIDs:  input.ProductIDs,
		AllActive:   input.AllActive,
		Concurrency: input.Concurrency,
	})
	if err != nil {
		logger.Error("failed to enqueue pricing pass", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "failed to enqueue pricing pass")
		return
	}

	logger.Info("pricing pass enqueued", zap.String("taskId", taskID))
	c.writeJSON(w, http.StatusAccepted, dto.AsyncPassResponse{
		TraceID:   traceID,
		TaskID:    taskID,
		Queue:     jobs.QueueDefault,
		Timestamp: time.Now().UTC(),
	})
}

func (c *PricingController) SetActivation(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ActivationRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	outcome, err := c.useCase.SetActivation(r.Context(), usecase.ActivationInput{
		ProductIDs:  req.ProductIDs,
		Active:      *req.Active,
		Concurrency: req.Concurrency,
	})
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOutcome(w, traceID, outcome)
}

func (c *PricingController) Quote(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.QuoteRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	strategy, err := domain.ParseStrategy(req.Strategy)
	if err != nil {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{Field: "strategy", Message: err.Error()})
		return
	}

	input := usecase.QuoteInput{
		CostPrice: domain.MoneyFromDecimal(req.CostPrice, c.minorDigits),
		Strategy:  strategy,
		MinProfit: domain.MoneyFromDecimal(req.MinProfit, c.minorDigits),
		MaxProfit: domain.MoneyFromDecimal(req.MaxProfit, c.minorDigits),
		Offers:    make([]domain.CompetitorOffer, len(req.Offers)),
	}
	if req.Step != nil {
		input.Step = domain.MoneyFromDecimal(*req.Step, c.minorDigits)
	}
	for i, offer := range req.Offers {
		input.Offers[i] = domain.CompetitorOffer{
			SellerID: offer.SellerID,
			Price:    domain.MoneyFromDecimal(offer.Price, c.minorDigits),
		}
	}

	decision, err := c.useCase.Quote(input)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.QuoteResponse{
		TraceID:          traceID,
		RecommendedPrice: decision.RecommendedPrice.Decimal(c.minorDigits),
		Rationale:        string(decision.Rationale),
	})
}

// decode reads and validates the JSON body into req. It writes the error
// response itself and returns false when the request is unusable.
func (c *PricingController) decode(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	if err := dto.ValidateStruct(c.validate, req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return false
	}
	return true
}

func (c *PricingController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *PricingController) writeOutcome(w http.ResponseWriter, traceID string, outcome *domain.BatchOutcome) {
	response := dto.NewBatchOutcomeResponse(traceID, *outcome, c.minorDigits)

	statusCode := http.StatusOK
	switch dto.BatchStatusOf(*outcome) {
	case dto.BatchPartial:
		statusCode = http.StatusPartialContent
	case dto.BatchAllFailed:
		statusCode = http.StatusUnprocessableEntity
	}

	c.writeJSON(w, statusCode, response)
}

func (c *PricingController) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *PricingController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *PricingController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
