package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// QuoteController handles staff and customer quote actions.
type QuoteController struct {
	quotes *services.QuoteService
	log    *slog.Logger
}

func NewQuoteController(quotes *services.QuoteService, log *slog.Logger) *QuoteController {
	return &QuoteController{quotes: quotes, log: log}
}

// Create prices a new quote for a job.
func (h *QuoteController) Create(c *gin.Context) {
	var input services.CreateQuoteInput
	if !bindJSON(c, &input) {
		return
	}
	quote, err := h.quotes.Create(c.Request.Context(), utils.ActorFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

type quoteQuery struct {
	pageQuery
	Status models.QuoteStatus `form:"status"`
	JobID  string             `form:"jobId" binding:"omitempty,uuid"`
}

// List returns a page of quotes.
func (h *QuoteController) List(c *gin.Context) {
	var q quoteQuery
	if !bindQuery(c, &q) {
		return
	}
	quotes, total, err := h.quotes.List(c.Request.Context(), utils.ActorFrom(c), services.QuoteFilter{
		Status:   q.Status,
		JobID:    optionalID(q.JobID),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page(quotes, total, q.pageQuery))
}

// Get returns a quote with its line items.
func (h *QuoteController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.Get(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// Send emails the quote link to the customer.
func (h *QuoteController) Send(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.Send(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// View is the public quote page behind the emailed links.
func (h *QuoteController) View(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.View(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// Accept is public; the quote id from the emailed link identifies the customer.
func (h *QuoteController) Accept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.Accept(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

type RejectInput struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// Reject records the customer declining a quote.
func (h *QuoteController) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input RejectInput
	if !bindOptionalJSON(c, &input) {
		return
	}
	quote, err := h.quotes.Reject(c.Request.Context(), id, input.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ConvertToInvoice issues an invoice from an accepted quote.
func (h *QuoteController) ConvertToInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.quotes.ConvertToInvoice(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}
