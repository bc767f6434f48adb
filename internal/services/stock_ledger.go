package services

import (
	"context"
	"errors"
	"fmt"

	"orderhub/internal/repositories"

	"go.uber.org/zap"
)

// StockLedger applies signed quantity deltas to product stock.
// Adjustments to one product are serialized; different products proceed in parallel.
type StockLedger struct {
	products repositories.ProductRepository
	locks    *keyedMutex
	logger   *zap.Logger
}

// NewStockLedger creates a new StockLedger.
func NewStockLedger(products repositories.ProductRepository, logger *zap.Logger) *StockLedger {
	return &StockLedger{
		products: products,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// Adjust adds delta to the stock of productID, clamping the result at zero,
// and returns the stored value.
func (l *StockLedger) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	unlock := l.locks.Lock(productID)
	defer unlock()

	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return 0, l.classify(productID, err)
	}

	next := product.Stock + delta
	if next < 0 {
		l.logger.Debug("stock clamped at zero",
			zap.String("product_id", productID),
			zap.Int("stock", product.Stock),
			zap.Int("delta", delta))
		next = 0
	}

	if err := l.products.UpdateStock(ctx, productID, next); err != nil {
		return 0, l.classify(productID, err)
	}
	return next, nil
}

func (l *StockLedger) classify(productID string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return fmt.Errorf("%w: adjust stock of %s: %w", ErrStorage, productID, err)
}
