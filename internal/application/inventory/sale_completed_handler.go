package inventory

import (
	"context"
	"fmt"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleCompletedHandler applies a completed sale to the authoritative
// stock counts. The register only checks its cached stock; this handler
// is where the real decrement happens.
type SaleCompletedHandler struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewSaleCompletedHandler creates a new handler for sale completed events
func NewSaleCompletedHandler(productRepo catalog.ProductRepository, logger *zap.Logger) *SaleCompletedHandler {
	return &SaleCompletedHandler{
		productRepo: productRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleCompletedHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleCompleted}
}

// Handle decrements stock for each sold line. Lines are processed
// independently: one product failing to decrement does not block the
// rest, since the sale itself is already persisted.
func (h *SaleCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*sales.SaleCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sales.EventTypeSaleCompleted, event.EventType())
	}

	h.logger.Info("applying completed sale to stock",
		zap.String("sale_number", completed.SaleNumber),
		zap.Int("lines", len(completed.Items)),
	)

	var failed int
	for _, item := range completed.Items {
		product, err := h.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			h.logger.Warn("sold product missing from catalog",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			failed++
			continue
		}
		if err := product.DecrementStock(item.Quantity); err != nil {
			h.logger.Warn("stock decrement failed",
				zap.String("product_id", item.ProductID.String()),
				zap.String("product_name", product.Name),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			failed++
			continue
		}
		if err := h.productRepo.Save(ctx, product); err != nil {
			h.logger.Error("failed to persist stock decrement",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("stock decrement incomplete for sale %s: %d of %d lines failed",
			completed.SaleNumber, failed, len(completed.Items))
	}
	return nil
}
