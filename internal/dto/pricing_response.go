package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"repricer/internal/domain"
)

type BatchStatus string

const (
	BatchAllSuccess BatchStatus = "ALL_SUCCESS"
	BatchPartial    BatchStatus = "PARTIAL"
	BatchAllFailed  BatchStatus = "ALL_FAILED"
)

// BatchStatusOf summarises an outcome. Skipped products do not count as
// failures, so a batch with only skips is ALL_SUCCESS.
func BatchStatusOf(o domain.BatchOutcome) BatchStatus {
	switch {
	case o.Failed == 0:
		return BatchAllSuccess
	case o.Failed == o.Total:
		return BatchAllFailed
	default:
		return BatchPartial
	}
}

type BatchOutcomeResponse struct {
	TraceID   string              `json:"traceId"`
	RunID     string              `json:"runId"`
	Operation string              `json:"operation"`
	Status    string              `json:"status"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
	Products  []ProductOutcomeDTO `json:"products"`
	Timestamp time.Time           `json:"timestamp"`
}

type ProductOutcomeDTO struct {
	ProductID  string           `json:"productId"`
	Status     string           `json:"status"`
	SkipReason string           `json:"skipReason,omitempty"`
	ErrorKind  string           `json:"errorKind,omitempty"`
	Message    string           `json:"message,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Rationale  string           `json:"rationale,omitempty"`
}

// NewBatchOutcomeResponse flattens an outcome into a response with products
// sorted by id.
func NewBatchOutcomeResponse(traceID string, o domain.BatchOutcome, minorDigits int32) BatchOutcomeResponse {
	products := make([]ProductOutcomeDTO, 0, len(o.PerProduct))
	for _, p := range o.PerProduct {
		item := ProductOutcomeDTO{
			ProductID:  p.ProductID,
			Status:     string(p.Status),
			SkipReason: string(p.SkipReason),
			ErrorKind:  string(p.ErrorKind),
			Message:    p.Message,
		}
		if p.Decision != nil {
			price := p.Decision.RecommendedPrice.Decimal(minorDigits)
			item.Price = &price
			item.Rationale = string(p.Decision.Rationale)
		}
		products = append(products, item)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductID < products[j].ProductID
	})

	return BatchOutcomeResponse{
		TraceID:   traceID,
		RunID:     o.RunID,
		Operation: string(o.Operation),
		Status:    string(BatchStatusOf(o)),
		Total:     o.Total,
		Succeeded: o.Succeeded,
		Failed:    o.Failed,
		Skipped:   o.Skipped,
		Products:  products,
		Timestamp: time.Now().UTC(),
	}
}

type AsyncPassResponse struct {
	TraceID   string    `json:"traceId"`
	TaskID    string    `json:"taskId"`
	Queue     string    `json:"queue"`
	Timestamp time.Time `json:"timestamp"`
}

type QuoteResponse struct {
	TraceID          string          `json:"traceId"`
	RecommendedPrice decimal.Decimal `json:"recommendedPrice"`
	Rationale        string          `json:"rationale"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
