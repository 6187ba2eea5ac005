package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleService answers queries over the persisted sales ledger. Sales
// are written exclusively through the register checkout flow; this
// service never mutates them.
type SaleService struct {
	saleRepo sales.SaleRepository
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo sales.SaleRepository) *SaleService {
	return &SaleService{saleRepo: saleRepo}
}

// GetByID returns a sale by id
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// GetBySaleNumber returns a sale by its human-readable number
func (s *SaleService) GetBySaleNumber(ctx context.Context, number string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindBySaleNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// List returns sales matching the filter along with the total count
func (s *SaleService) List(ctx context.Context, filter shared.Filter) ([]SaleResponse, int64, error) {
	found, err := s.saleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, 0, len(found))
	for i := range found {
		responses = append(responses, *ToSaleResponse(&found[i]))
	}
	return responses, total, nil
}

// DailySummary aggregates the sales of one calendar day
func (s *SaleService) DailySummary(ctx context.Context, day time.Time) (*DailySummaryResponse, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)

	found, err := s.saleRepo.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &DailySummaryResponse{
		Date:  from.Format("2006-01-02"),
		Total: decimal.Zero,
	}
	for i := range found {
		summary.SalesCount++
		summary.ItemsSold += found[i].ItemCount()
		summary.Total = summary.Total.Add(found[i].Total)
	}
	return summary, nil
}
