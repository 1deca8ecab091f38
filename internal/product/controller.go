package product

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"repricer/internal/dto"
	apperrors "repricer/internal/errors"
)

type Controller struct {
	useCase  UseCase
	validate *validator.Validate
	logger   *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase:  useCase,
		validate: dto.NewValidator(),
		logger:   logger,
	}
}

func (c *Controller) HandleGetBotSettings(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId is required",
		})
		return
	}

	resp, err := c.useCase.GetBotSettings(r.Context(), productID)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleUpdateBotSettings(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId is required",
		})
		return
	}

	var req UpdateBotSettingsRequest
	if !c.decode(w, r, logger, &req) {
		return
	}

	resp, err := c.useCase.UpdateBotSettings(r.Context(), productID, req)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleSyncCatalog(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req CatalogSyncRequest
	if !c.decode(w, r, logger, &req) {
		return
	}

	resp, err := c.useCase.SyncCatalog(r.Context(), req)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	if resp.FailedProductID != "" {
		logger.Warn("catalog sync stopped early",
			zap.Int("synced", resp.Synced),
			zap.String("productId", resp.FailedProductID),
		)
		c.writeJSON(w, http.StatusPartialContent, resp)
		return
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) decode(w http.ResponseWriter, r *http.Request, logger *zap.Logger, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	if err := dto.ValidateStruct(c.validate, req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return false
	}
	return true
}

func (c *Controller) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "NOT_FOUND",
			"message": err.Error(),
		})
		return
	}

	logger.Error("bot settings request failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
