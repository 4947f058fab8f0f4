package usecase

import (
	"context"
	"errors"
	"time"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// StockOptions bounds the retry loop around the conditional quantity write.
type StockOptions struct {
	MaxTries      uint
	RetryInterval time.Duration
}

type StockUseCase interface {
	AdjustStock(ctx context.Context, productID, amount int, dir domain.Direction) (*domain.Product, error)
}

type stockUseCase struct {
	productRepo domain.ProductRepository
	opts        StockOptions
	metrics     *metrics.Metrics
	log         *logrus.Logger
}

func NewStockUseCase(repo domain.ProductRepository, opts StockOptions, m *metrics.Metrics, logger *logrus.Logger) StockUseCase {
	if opts.MaxTries == 0 {
		opts.MaxTries = 5
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}
	return &stockUseCase{
		productRepo: repo,
		opts:        opts,
		metrics:     m,
		log:         logger,
	}
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStoreUnavailable)
}

// AdjustStock reads the product, computes the new balance and writes it only if the
// balance has not moved in between. A concurrent change restarts the cycle.
func (uc *stockUseCase) AdjustStock(ctx context.Context, productID, amount int, dir domain.Direction) (*domain.Product, error) {
	if err := validateID("product id", productID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		uc.log.Warnf("Use Case: Rejected adjustment of product %d by %d", productID, amount)
		return nil, &domain.ValidationError{Field: "amount", Err: domain.ErrNonPositiveDelta}
	}
	if dir != domain.DirectionIn && dir != domain.DirectionOut {
		return nil, &domain.ValidationError{Field: "direction", Err: domain.ErrInvalidDirection}
	}

	operation := func() (*domain.Product, error) {
		current, err := uc.productRepo.GetProductByID(ctx, productID)
		if err != nil {
			if retryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		next, err := domain.ApplyAdjustment(current.Quantity, amount, dir)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		updated, err := uc.productRepo.SetQuantityIfUnchanged(ctx, productID, current.Quantity, next)
		if err != nil {
			if retryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return updated, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.opts.RetryInterval
	b.MaxInterval = 20 * uc.opts.RetryInterval

	uc.log.Infof("Use Case: Adjusting product %d: %s %d", productID, dir, amount)
	product, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uc.opts.MaxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			uc.metrics.AdjustmentRetried()
			uc.log.Warnf("Use Case: Adjustment of product %d retried in %s: %v", productID, wait, err)
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		uc.metrics.AdjustmentDone(string(dir), outcome(err))
		uc.log.Warnf("Use Case: Adjustment of product %d failed: %v", productID, err)
		return nil, err
	}

	uc.metrics.AdjustmentDone(string(dir), "applied")
	uc.log.Infof("Use Case: Product %d quantity is now %d", productID, product.Quantity)
	return product, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrQuantityOverflow):
		return "quantity_overflow"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
