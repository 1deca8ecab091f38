package errors

import (
	"errors"
	"fmt"

	"repricer/internal/domain"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// PricingError classifies a per-product failure inside a batch run.
type PricingError struct {
	Kind      domain.ErrorKind
	ProductID string
	Cause     error
}

func (e *PricingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s for product %s: %v", e.Kind, e.ProductID, e.Cause)
	}
	return fmt.Sprintf("%s for product %s", e.Kind, e.ProductID)
}

func (e *PricingError) Unwrap() error {
	return e.Cause
}

func NewPricingError(kind domain.ErrorKind, productID string, cause error) *PricingError {
	return &PricingError{
		Kind:      kind,
		ProductID: productID,
		Cause:     cause,
	}
}

// KindOf extracts the error kind of err, or "" when err carries none.
func KindOf(err error) domain.ErrorKind {
	var pe *PricingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if _, ok := IsNotFoundError(err); ok {
		return domain.KindNotFound
	}
	return ""
}
