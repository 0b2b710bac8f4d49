package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munderdifflin/fulfillment-service/internal/fulfillment"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/internal/quotes"
	"github.com/munderdifflin/fulfillment-service/internal/reporting"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	fulfillment fulfillment.UseCase
	reporting   reporting.UseCase
	quotes      quotes.UseCase
	logger      logger.ZapLogger
}

func NewOrderHandler(f fulfillment.UseCase, r reporting.UseCase, q quotes.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		fulfillment: f,
		reporting:   r,
		quotes:      q,
		logger:      log,
	}
}

func (h *OrderHandler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/orders", h.CreateOrder)
	r.GET("/cash", h.CashBalance)
	r.GET("/inventory", h.Inventory)
	r.GET("/reports/financial", h.FinancialReport)
	r.GET("/quotes/search", h.SearchQuotes)
}

func (h *OrderHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createOrderRequest struct {
	Lines []model.LineItem `json:"lines"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	resp, err := h.fulfillment.ProcessOrder(c.Request.Context(), req.Lines)
	if err != nil {
		h.logger.Error("order processing failed", zap.Error(err))
		if errors.Is(err, model.ErrLedgerUnavailable) {
			// Nothing was written; the caller may retry the whole order.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"state": model.OrderFailed,
				"error": "ledger unavailable, order not processed",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if resp.State == model.OrderRejected {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

func (h *OrderHandler) CashBalance(c *gin.Context) {
	balance, err := h.reporting.CashBalance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash_balance": balance})
}

func (h *OrderHandler) Inventory(c *gin.Context) {
	snap, err := h.reporting.InventorySnapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *OrderHandler) FinancialReport(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			// Date-only form is accepted too
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be RFC3339 or YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	report, err := h.reporting.FinancialReport(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *OrderHandler) SearchQuotes(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("q"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is a mandatory field"})
		return
	}

	records, err := h.quotes.Search(c.Request.Context(), strings.Fields(raw), 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": records})
}
