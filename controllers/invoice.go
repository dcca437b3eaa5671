// controllers/invoice.go
package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// InvoiceController handles invoice lookups and payments.
type InvoiceController struct {
	invoices *services.InvoiceService
	log      *slog.Logger
}

func NewInvoiceController(invoices *services.InvoiceService, log *slog.Logger) *InvoiceController {
	return &InvoiceController{invoices: invoices, log: log}
}

type invoiceQuery struct {
	pageQuery
	Status     models.InvoiceStatus `form:"status"`
	CustomerID string               `form:"customerId" binding:"omitempty,uuid"`
}

// List retrieves invoices newest first
func (h *InvoiceController) List(c *gin.Context) {
	var q invoiceQuery
	if !bindQuery(c, &q) {
		return
	}
	invoices, total, err := h.invoices.List(c.Request.Context(), utils.ActorFrom(c), services.InvoiceFilter{
		Status:     q.Status,
		CustomerID: optionalID(q.CustomerID),
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page(invoices, total, q.pageQuery))
}

// Get retrieves a specific invoice by ID
func (h *InvoiceController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.Get(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// RecordPayment adds a payment and returns the updated invoice
func (h *InvoiceController) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.PaymentInput
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := h.invoices.RecordPayment(c.Request.Context(), utils.ActorFrom(c), id, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
