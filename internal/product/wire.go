package product

import (
	"time"

	"go.uber.org/zap"
)

func NewModule(repo Repository, locker Locker, logger *zap.Logger, minorDigits int32, storeTimeout time.Duration) *Controller {
	svc := NewService(repo, locker, logger, storeTimeout)
	uc := NewUseCase(svc, minorDigits)
	return NewController(uc, logger)
}
