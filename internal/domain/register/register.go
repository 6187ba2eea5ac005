package register

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/shared"
)

// CategoryAll is the sentinel category meaning "no category filter"
const CategoryAll = "Todos"

// CatalogSource supplies product data to the register cache
type CatalogSource interface {
	GetProducts(ctx context.Context) ([]catalog.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error)
}

// CustomerSource supplies customer data to the register cache
type CustomerSource interface {
	GetCustomers(ctx context.Context) ([]partner.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]partner.Customer, error)
}

// CheckoutDraft is a snapshot of a ticket handed to the checkout flow.
// The ticket itself stays untouched until CompleteTicket is called, so a
// failed sale persistence leaves the cart intact.
type CheckoutDraft struct {
	TicketID     uuid.UUID
	Items        []CartItem
	CustomerID   *uuid.UUID
	CustomerName string
	Observations string
}

// Register is the in-memory multi-ticket store behind the cashier
// screen. It owns all ticket state plus cached catalog and customer
// snapshots, and guards them with a mutex so handlers can call it from
// concurrent requests. Cache refreshes call the sources outside the
// lock and apply their result atomically; the last writer wins.
type Register struct {
	mu             sync.Mutex
	tickets        []*Ticket
	activeTicketID uuid.UUID
	products       []catalog.Product
	customers      []partner.Customer
	loading        bool
	lastErr        error

	catalogSource  CatalogSource
	customerSource CustomerSource
}

// NewRegister creates a register with one empty focused ticket
func NewRegister(catalogSource CatalogSource, customerSource CustomerSource) *Register {
	r := &Register{
		catalogSource:  catalogSource,
		customerSource: customerSource,
	}
	ticket := NewTicket()
	r.tickets = append(r.tickets, ticket)
	r.activeTicketID = ticket.ID
	return r
}

// CreateTicket opens a new empty ticket and focuses it
func (r *Register) CreateTicket() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := NewTicket()
	r.tickets = append(r.tickets, ticket)
	r.activeTicketID = ticket.ID
	return ticket.Clone()
}

// Tickets returns the non-deleted tickets in creation order
func (r *Register) Tickets() []Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if t.Status != TicketStatusDeleted {
			result = append(result, t.Clone())
		}
	}
	return result
}

// ActiveTicketID returns the id of the focused ticket
func (r *Register) ActiveTicketID() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeTicketID
}

// ActiveTicket returns the focused ticket
func (r *Register) ActiveTicket() (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(r.activeTicketID)
	if ticket == nil {
		return Ticket{}, shared.ErrNotFound
	}
	return ticket.Clone(), nil
}

// GetTicket returns the ticket with the given id, deleted ones included
func (r *Register) GetTicket(ticketID uuid.UUID) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return Ticket{}, shared.ErrNotFound
	}
	return ticket.Clone(), nil
}

// SwitchTicket moves focus to the given non-deleted ticket
func (r *Register) SwitchTicket(ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil || ticket.Status == TicketStatusDeleted {
		return shared.ErrNotFound
	}
	r.activeTicketID = ticket.ID
	return nil
}

// AddItem adds one unit of the cached product to the focused ticket
func (r *Register) AddItem(productID uuid.UUID) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(r.activeTicketID)
	if ticket == nil {
		return Ticket{}, shared.ErrNotFound
	}
	product := r.findProduct(productID)
	if product == nil {
		return Ticket{}, shared.ErrProductNotFound
	}
	if err := ticket.AddLine(*product); err != nil {
		return Ticket{}, err
	}
	return ticket.Clone(), nil
}

// UpdateQuantity sets the quantity of a line on the focused ticket.
// Quantity zero removes the line without consulting the catalog, so a
// line whose product has since left the cache can still be zeroed out.
func (r *Register) UpdateQuantity(productID uuid.UUID, quantity int) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(r.activeTicketID)
	if ticket == nil {
		return Ticket{}, shared.ErrNotFound
	}
	if quantity < 0 {
		return Ticket{}, shared.ErrInvalidInput
	}
	if quantity == 0 {
		ticket.RemoveLine(productID)
		return ticket.Clone(), nil
	}
	product := r.findProduct(productID)
	if product == nil {
		return Ticket{}, shared.ErrProductNotFound
	}
	if err := ticket.SetLineQuantity(*product, quantity); err != nil {
		return Ticket{}, err
	}
	return ticket.Clone(), nil
}

// RemoveItem removes a line from the focused ticket
func (r *Register) RemoveItem(productID uuid.UUID) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(r.activeTicketID)
	if ticket == nil {
		return Ticket{}, shared.ErrNotFound
	}
	ticket.RemoveLine(productID)
	return ticket.Clone(), nil
}

// DeleteTicket soft-deletes a ticket. If it held the focus, focus moves
// to the first remaining non-deleted ticket; if none remain a fresh
// ticket is created and focused.
func (r *Register) DeleteTicket(ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return shared.ErrNotFound
	}
	ticket.MarkDeleted()

	if r.activeTicketID != ticketID {
		return nil
	}
	for _, t := range r.tickets {
		if t.Status != TicketStatusDeleted {
			r.activeTicketID = t.ID
			return nil
		}
	}
	fresh := NewTicket()
	r.tickets = append(r.tickets, fresh)
	r.activeTicketID = fresh.ID
	return nil
}

// RestoreTicket reactivates a soft-deleted ticket without moving focus
func (r *Register) RestoreTicket(ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return shared.ErrNotFound
	}
	ticket.Restore()
	return nil
}

// SaveTicket marks a ticket as explicitly saved
func (r *Register) SaveTicket(ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return shared.ErrNotFound
	}
	ticket.MarkSaved()
	return nil
}

// SetCustomer assigns the customer reference on a ticket
func (r *Register) SetCustomer(ticketID uuid.UUID, customerID *uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return shared.ErrNotFound
	}
	ticket.SetCustomer(customerID, name)
	return nil
}

// SetObservations assigns free-text notes to a ticket
func (r *Register) SetObservations(ticketID uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return shared.ErrNotFound
	}
	ticket.SetObservations(text)
	return nil
}

// BeginCheckout snapshots a ticket for sale persistence. It rejects an
// empty cart and leaves the ticket untouched.
func (r *Register) BeginCheckout(ticketID uuid.UUID) (CheckoutDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return CheckoutDraft{}, shared.ErrNotFound
	}
	if ticket.IsEmpty() {
		return CheckoutDraft{}, shared.ErrEmptyCart
	}

	clone := ticket.Clone()
	return CheckoutDraft{
		TicketID:     clone.ID,
		Items:        clone.Items,
		CustomerID:   clone.CustomerID,
		CustomerName: clone.CustomerName,
		Observations: clone.Observations,
	}, nil
}

// CompleteTicket recycles the ticket slot once the sale record has been
// persisted: status passes through completed and the same id comes back
// as a fresh active ticket.
func (r *Register) CompleteTicket(ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := r.findTicket(ticketID)
	if ticket == nil {
		return shared.ErrNotFound
	}
	ticket.Status = TicketStatusCompleted
	ticket.Reset()
	return nil
}

// FilterProducts filters the cached catalog by category and search
// term. CategoryAll disables the category restriction. The term matches
// case-insensitively against the name, or as a substring of the
// barcode. Pure read, never mutates the cache.
func (r *Register) FilterProducts(searchTerm, category string) []catalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	result := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if category != CategoryAll && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(p.Barcode, term) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// Products returns the cached catalog snapshot
func (r *Register) Products() []catalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]catalog.Product, len(r.products))
	copy(result, r.products)
	return result
}

// Customers returns the cached customer snapshot
func (r *Register) Customers() []partner.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]partner.Customer, len(r.customers))
	copy(result, r.customers)
	return result
}

// LoadProducts refreshes the catalog cache. On failure the previous
// cache stays in place and the error is recorded.
func (r *Register) LoadProducts(ctx context.Context) error {
	r.setLoading(true)
	products, err := r.catalogSource.GetProducts(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.lastErr = shared.WrapError(err, shared.ErrCacheLoadFailed.Code, "Failed to load products")
		return r.lastErr
	}
	r.products = products
	r.lastErr = nil
	return nil
}

// LoadCustomers refreshes the customer cache with the same
// stale-on-failure policy as LoadProducts.
func (r *Register) LoadCustomers(ctx context.Context) error {
	r.setLoading(true)
	customers, err := r.customerSource.GetCustomers(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.lastErr = shared.WrapError(err, shared.ErrCacheLoadFailed.Code, "Failed to load customers")
		return r.lastErr
	}
	r.customers = customers
	r.lastErr = nil
	return nil
}

// SearchProductByBarcode resolves a barcode scan, preferring the cache
// and falling back to the catalog source.
func (r *Register) SearchProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	r.mu.Lock()
	for _, p := range r.products {
		if p.Barcode != "" && p.Barcode == barcode {
			found := p
			r.mu.Unlock()
			return &found, nil
		}
	}
	r.mu.Unlock()

	product, err := r.catalogSource.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, shared.ErrProductNotFound
	}
	return product, nil
}

// SearchCustomers queries the customer source directly
func (r *Register) SearchCustomers(ctx context.Context, query string) ([]partner.Customer, error) {
	customers, err := r.customerSource.SearchCustomers(ctx, query)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrCacheLoadFailed.Code, "Failed to search customers")
	}
	return customers, nil
}

// IsLoading reports whether a cache refresh is in flight
func (r *Register) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// LastError returns the most recent cache refresh failure, if any
func (r *Register) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *Register) setLoading(v bool) {
	r.mu.Lock()
	r.loading = v
	r.mu.Unlock()
}

// findTicket must be called with the lock held
func (r *Register) findTicket(id uuid.UUID) *Ticket {
	for _, t := range r.tickets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// findProduct must be called with the lock held
func (r *Register) findProduct(id uuid.UUID) *catalog.Product {
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i]
		}
	}
	return nil
}
