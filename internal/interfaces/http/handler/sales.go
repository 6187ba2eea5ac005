package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// SalesHandler handles the sales ledger API endpoints.
// The ledger is read-only over HTTP: sales are only created through
// register checkout.
type SalesHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(saleService *salesapp.SaleService) *SalesHandler {
	return &SalesHandler{saleService: saleService}
}

// RegisterRoutes registers all sales routes
func (h *SalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")

	sales.GET("", h.List)
	sales.GET("/summary/daily", h.DailySummary)
	sales.GET("/number/:number", h.GetBySaleNumber)
	sales.GET("/:id", h.GetByID)
}

// List returns sales matching the filter
func (h *SalesHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
		Filters:  make(map[string]interface{}),
	}
	if payment := c.Query("payment_method"); payment != "" {
		filter.Filters["payment_method"] = payment
	}

	sales, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// DailySummary returns totals for one day (defaults to today)
func (h *SalesHandler) DailySummary(c *gin.Context) {
	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := h.saleService.DailySummary(c.Request.Context(), day)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetBySaleNumber returns one sale by its sale number
func (h *SalesHandler) GetBySaleNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Sale number is required")
		return
	}

	sale, err := h.saleService.GetBySaleNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetByID returns one sale by id
func (h *SalesHandler) GetByID(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}
