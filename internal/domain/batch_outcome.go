package domain

type BatchOperation string

const (
	OperationPricingPass   BatchOperation = "PRICING_PASS"
	OperationSetActivation BatchOperation = "SET_ACTIVATION"
)

type OutcomeStatus string

const (
	OutcomeOK      OutcomeStatus = "OK"
	OutcomeSkipped OutcomeStatus = "SKIPPED"
	OutcomeFailed  OutcomeStatus = "FAILED"
)

type SkipReason string

const (
	SkipInactive  SkipReason = "inactive"
	SkipNotFound  SkipReason = "not_found"
	SkipCancelled SkipReason = "cancelled"
)

type ErrorKind string

const (
	KindInvalidConfig    ErrorKind = "InvalidConfig"
	KindFeedUnavailable  ErrorKind = "FeedUnavailable"
	KindApplyFailed      ErrorKind = "ApplyFailed"
	KindNotFound         ErrorKind = "NotFound"
	KindStoreUnavailable ErrorKind = "StoreUnavailable"
	KindLockUnavailable  ErrorKind = "LockUnavailable"
)

// ProductOutcome is the terminal state of one product within a batch.
// Decision is set only for successful pricing passes.
type ProductOutcome struct {
	ProductID  string
	Status     OutcomeStatus
	SkipReason SkipReason
	ErrorKind  ErrorKind
	Message    string
	Decision   *PricingDecision
}

type BatchOutcome struct {
	RunID      string
	Operation  BatchOperation
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	PerProduct map[string]ProductOutcome
}

// Balanced reports whether the aggregate counts add up to Total.
func (o BatchOutcome) Balanced() bool {
	return o.Succeeded+o.Failed+o.Skipped == o.Total
}

func (o BatchOutcome) FailedIDs() []string {
	var ids []string
	for id, p := range o.PerProduct {
		if p.Status == OutcomeFailed {
			ids = append(ids, id)
		}
	}
	return ids
}
