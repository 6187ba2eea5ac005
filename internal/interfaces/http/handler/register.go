package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	registerapp "github.com/pos/backend/internal/application/register"
)

// RegisterHandler exposes the ticket register: multi-ticket management,
// cart mutations on the focused ticket, checkout and the cached
// product/customer lookups the sales screen works against.
type RegisterHandler struct {
	BaseHandler
	service *registerapp.RegisterService
}

// NewRegisterHandler creates a new RegisterHandler
func NewRegisterHandler(service *registerapp.RegisterService) *RegisterHandler {
	return &RegisterHandler{service: service}
}

// RegisterRoutes registers all register routes
func (h *RegisterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	register := rg.Group("/register")

	register.GET("/tickets", h.ListTickets)
	register.POST("/tickets", h.CreateTicket)
	register.GET("/tickets/active", h.GetActiveTicket)
	register.GET("/tickets/:id", h.GetTicket)
	register.POST("/tickets/:id/switch", h.SwitchTicket)
	register.POST("/tickets/:id/save", h.SaveTicket)
	register.POST("/tickets/:id/restore", h.RestoreTicket)
	register.DELETE("/tickets/:id", h.DeleteTicket)
	register.PUT("/tickets/:id/customer", h.SetCustomer)
	register.PUT("/tickets/:id/observations", h.SetObservations)
	register.POST("/tickets/:id/checkout", h.Checkout)

	register.POST("/items", h.AddItem)
	register.PUT("/items", h.UpdateQuantity)
	register.DELETE("/items/:product_id", h.RemoveItem)

	register.GET("/products", h.FilterProducts)
	register.GET("/products/barcode/:barcode", h.SearchProductByBarcode)
	register.GET("/customers", h.ListCustomers)
	register.GET("/customers/search", h.SearchCustomers)

	register.POST("/sync/products", h.SyncProducts)
	register.POST("/sync/customers", h.SyncCustomers)
	register.GET("/status", h.Status)
}

// ListTickets returns all visible tickets and the focused ticket id
func (h *RegisterHandler) ListTickets(c *gin.Context) {
	h.Success(c, h.service.ListTickets())
}

// CreateTicket opens a new ticket and moves focus to it
func (h *RegisterHandler) CreateTicket(c *gin.Context) {
	h.Created(c, h.service.CreateTicket())
}

// GetActiveTicket returns the focused ticket
func (h *RegisterHandler) GetActiveTicket(c *gin.Context) {
	ticket, err := h.service.GetActiveTicket()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ticket)
}

// GetTicket returns one ticket by id
func (h *RegisterHandler) GetTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	ticket, err := h.service.GetTicket(ticketID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ticket)
}

// SwitchTicket moves focus to the given ticket
func (h *RegisterHandler) SwitchTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	if err := h.service.SwitchTicket(ticketID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	ticket, err := h.service.GetActiveTicket()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ticket)
}

// SaveTicket parks the ticket so another sale can be rung up
func (h *RegisterHandler) SaveTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	if err := h.service.SaveTicket(ticketID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// RestoreTicket brings a soft-deleted ticket back
func (h *RegisterHandler) RestoreTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	if err := h.service.RestoreTicket(ticketID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteTicket soft-deletes a ticket, moving focus if it was focused
func (h *RegisterHandler) DeleteTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	if err := h.service.DeleteTicket(ticketID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// SetCustomer assigns a customer reference to a ticket
func (h *RegisterHandler) SetCustomer(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req registerapp.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetCustomer(ticketID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// SetObservations assigns free-text notes to a ticket
func (h *RegisterHandler) SetObservations(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req registerapp.SetObservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetObservations(ticketID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Checkout finalizes a ticket into a persisted sale. A retried request
// carrying the same Idempotency-Key header replays the stored
// confirmation instead of creating a second sale.
func (h *RegisterHandler) Checkout(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req registerapp.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	result, err := h.service.Checkout(c.Request.Context(), ticketID, req, idempotencyKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// AddItem adds one unit of a product to the focused ticket
func (h *RegisterHandler) AddItem(c *gin.Context) {
	var req registerapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.service.AddItem(req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ticket)
}

// UpdateQuantity sets a line quantity on the focused ticket.
// Quantity zero removes the line.
func (h *RegisterHandler) UpdateQuantity(c *gin.Context) {
	var req registerapp.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.service.UpdateQuantity(req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ticket)
}

// RemoveItem removes a line from the focused ticket
func (h *RegisterHandler) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	ticket, err := h.service.RemoveItem(productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ticket)
}

// FilterProducts filters the cached product list by search term and category
func (h *RegisterHandler) FilterProducts(c *gin.Context) {
	search := c.Query("search")
	category := c.Query("category")
	h.Success(c, h.service.FilterProducts(search, category))
}

// SearchProductByBarcode looks a product up by exact barcode,
// falling back to the catalog when the cache misses
func (h *RegisterHandler) SearchProductByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")

	product, err := h.service.SearchProductByBarcode(c.Request.Context(), barcode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCustomers returns the cached customer list
func (h *RegisterHandler) ListCustomers(c *gin.Context) {
	h.Success(c, h.service.ListCachedCustomers())
}

// SearchCustomers searches customers by name
func (h *RegisterHandler) SearchCustomers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.BadRequest(c, "Query parameter 'q' is required")
		return
	}

	customers, err := h.service.SearchCustomers(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customers)
}

// SyncProducts refreshes the cached product list from the catalog
func (h *RegisterHandler) SyncProducts(c *gin.Context) {
	if err := h.service.LoadProducts(c.Request.Context()); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, h.service.ListCachedProducts())
}

// SyncCustomers refreshes the cached customer list
func (h *RegisterHandler) SyncCustomers(c *gin.Context) {
	if err := h.service.LoadCustomers(c.Request.Context()); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, h.service.ListCachedCustomers())
}

// Status reports cache loading state and the last sync error
func (h *RegisterHandler) Status(c *gin.Context) {
	h.Success(c, h.service.Status())
}
