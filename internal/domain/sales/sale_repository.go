package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// SaleRepository defines the persistence interface for sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindBySaleNumber(ctx context.Context, number string) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error)
	Save(ctx context.Context, sale *Sale) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
