package register

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/register"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// checkoutResultTTL bounds how long a replayed idempotency key returns
// the original confirmation.
const checkoutResultTTL = 24 * time.Hour

// IdempotencyStore remembers checkout confirmations by client-supplied
// key so a retried request does not create a second sale.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RegisterService exposes the ticket register to the transport layer
// and orchestrates checkout: snapshot the cart, persist the sale,
// publish its events, and only then recycle the ticket slot. A failed
// persistence therefore leaves the cart intact for retry.
type RegisterService struct {
	store            *register.Register
	saleRepo         sales.SaleRepository
	eventPublisher   shared.EventPublisher
	idempotencyStore IdempotencyStore
	logger           *zap.Logger
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(
	store *register.Register,
	saleRepo sales.SaleRepository,
	eventPublisher shared.EventPublisher,
	idempotencyStore IdempotencyStore,
	logger *zap.Logger,
) *RegisterService {
	return &RegisterService{
		store:            store,
		saleRepo:         saleRepo,
		eventPublisher:   eventPublisher,
		idempotencyStore: idempotencyStore,
		logger:           logger,
	}
}

// CreateTicket opens a new focused ticket
func (s *RegisterService) CreateTicket() TicketResponse {
	return ToTicketResponse(s.store.CreateTicket())
}

// ListTickets returns the visible tickets and the focused ticket id
func (s *RegisterService) ListTickets() TicketListResponse {
	tickets := s.store.Tickets()
	responses := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		responses = append(responses, ToTicketResponse(t))
	}
	return TicketListResponse{
		Tickets:        responses,
		ActiveTicketID: s.store.ActiveTicketID(),
	}
}

// GetActiveTicket returns the focused ticket
func (s *RegisterService) GetActiveTicket() (TicketResponse, error) {
	ticket, err := s.store.ActiveTicket()
	if err != nil {
		return TicketResponse{}, err
	}
	return ToTicketResponse(ticket), nil
}

// GetTicket returns a ticket by id, deleted ones included
func (s *RegisterService) GetTicket(ticketID uuid.UUID) (TicketResponse, error) {
	ticket, err := s.store.GetTicket(ticketID)
	if err != nil {
		return TicketResponse{}, err
	}
	return ToTicketResponse(ticket), nil
}

// SwitchTicket moves focus to another ticket
func (s *RegisterService) SwitchTicket(ticketID uuid.UUID) error {
	return s.store.SwitchTicket(ticketID)
}

// AddItem adds one unit of a product to the focused ticket
func (s *RegisterService) AddItem(req AddItemRequest) (TicketResponse, error) {
	ticket, err := s.store.AddItem(req.ProductID)
	if err != nil {
		return TicketResponse{}, err
	}
	return ToTicketResponse(ticket), nil
}

// UpdateQuantity sets a line quantity on the focused ticket
func (s *RegisterService) UpdateQuantity(req UpdateQuantityRequest) (TicketResponse, error) {
	ticket, err := s.store.UpdateQuantity(req.ProductID, req.Quantity)
	if err != nil {
		return TicketResponse{}, err
	}
	return ToTicketResponse(ticket), nil
}

// RemoveItem removes a line from the focused ticket
func (s *RegisterService) RemoveItem(productID uuid.UUID) (TicketResponse, error) {
	ticket, err := s.store.RemoveItem(productID)
	if err != nil {
		return TicketResponse{}, err
	}
	return ToTicketResponse(ticket), nil
}

// DeleteTicket soft-deletes a ticket
func (s *RegisterService) DeleteTicket(ticketID uuid.UUID) error {
	return s.store.DeleteTicket(ticketID)
}

// RestoreTicket reactivates a soft-deleted ticket
func (s *RegisterService) RestoreTicket(ticketID uuid.UUID) error {
	return s.store.RestoreTicket(ticketID)
}

// SaveTicket marks a ticket as explicitly saved
func (s *RegisterService) SaveTicket(ticketID uuid.UUID) error {
	return s.store.SaveTicket(ticketID)
}

// SetCustomer assigns a customer reference to a ticket
func (s *RegisterService) SetCustomer(ticketID uuid.UUID, req SetCustomerRequest) error {
	return s.store.SetCustomer(ticketID, req.CustomerID, req.CustomerName)
}

// SetObservations assigns free-text notes to a ticket
func (s *RegisterService) SetObservations(ticketID uuid.UUID, req SetObservationsRequest) error {
	return s.store.SetObservations(ticketID, req.Observations)
}

// Checkout finalizes a ticket into a persisted sale. When an
// idempotency key is supplied, a repeated call replays the original
// confirmation instead of creating a new sale.
func (s *RegisterService) Checkout(ctx context.Context, ticketID uuid.UUID, req CheckoutRequest, idempotencyKey string) (CheckoutResponse, error) {
	if idempotencyKey != "" {
		if cached, ok := s.lookupCheckout(ctx, idempotencyKey); ok {
			s.logger.Info("replaying checkout result for idempotency key",
				zap.String("ticket_id", ticketID.String()),
				zap.String("sale_number", cached.SaleNumber),
			)
			return cached, nil
		}
	}

	draft, err := s.store.BeginCheckout(ticketID)
	if err != nil {
		return CheckoutResponse{}, err
	}

	lines := make([]sales.SaleLine, 0, len(draft.Items))
	for _, item := range draft.Items {
		lines = append(lines, sales.SaleLine{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	sale, err := sales.NewSale(lines, sales.PaymentMethod(req.PaymentMethod), draft.CustomerID, draft.CustomerName, draft.Observations)
	if err != nil {
		return CheckoutResponse{}, err
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		s.logger.Error("failed to persist sale, ticket left intact",
			zap.String("ticket_id", ticketID.String()),
			zap.Error(err),
		)
		return CheckoutResponse{}, err
	}

	if s.eventPublisher != nil {
		for _, event := range sale.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish sale event",
					zap.String("event_type", event.EventType()),
					zap.Error(err),
				)
			}
		}
		sale.ClearDomainEvents()
	}

	if err := s.store.CompleteTicket(ticketID); err != nil {
		// the sale is already persisted; report but do not fail checkout
		s.logger.Warn("sale persisted but ticket reset failed",
			zap.String("ticket_id", ticketID.String()),
			zap.Error(err),
		)
	}

	response := CheckoutResponse{
		SaleID:        sale.ID,
		SaleNumber:    sale.SaleNumber,
		Total:         sale.Total,
		PaymentMethod: string(sale.PaymentMethod),
		ItemCount:     sale.ItemCount(),
		CompletedAt:   sale.CompletedAt,
	}

	if idempotencyKey != "" {
		s.rememberCheckout(ctx, idempotencyKey, response)
	}

	s.logger.Info("sale completed",
		zap.String("ticket_id", ticketID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total", sale.Total.StringFixed(2)),
	)

	return response, nil
}

func (s *RegisterService) lookupCheckout(ctx context.Context, key string) (CheckoutResponse, bool) {
	data, found, err := s.idempotencyStore.Get(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency lookup failed", zap.Error(err))
		return CheckoutResponse{}, false
	}
	if !found {
		return CheckoutResponse{}, false
	}
	var cached CheckoutResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.logger.Warn("discarding corrupt idempotency record", zap.Error(err))
		return CheckoutResponse{}, false
	}
	return cached, true
}

func (s *RegisterService) rememberCheckout(ctx context.Context, key string, response CheckoutResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.idempotencyStore.Set(ctx, key, data, checkoutResultTTL); err != nil {
		s.logger.Warn("failed to store idempotency record", zap.Error(err))
	}
}
