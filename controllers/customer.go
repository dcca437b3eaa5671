package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// CustomerController exposes customer records to staff.
type CustomerController struct {
	customers *services.CustomerService
	log       *slog.Logger
}

func NewCustomerController(customers *services.CustomerService, log *slog.Logger) *CustomerController {
	return &CustomerController{customers: customers, log: log}
}

// Create registers a new customer for the shop.
func (h *CustomerController) Create(c *gin.Context) {
	var input services.CustomerInput
	if !bindJSON(c, &input) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), utils.ActorFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

type customerQuery struct {
	pageQuery
	Search string `form:"search"`
}

// List returns a page of customers matching the search term.
func (h *CustomerController) List(c *gin.Context) {
	var q customerQuery
	if !bindQuery(c, &q) {
		return
	}
	customers, total, err := h.customers.List(c.Request.Context(), utils.ActorFrom(c), services.CustomerFilter{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page(customers, total, q.pageQuery))
}

// Get returns a customer with their repair jobs.
func (h *CustomerController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.Get(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Update changes the supplied customer fields.
func (h *CustomerController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateCustomerInput
	if !bindJSON(c, &input) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), utils.ActorFrom(c), id, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete removes a customer who has no unfinished jobs.
func (h *CustomerController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customers.Delete(c.Request.Context(), utils.ActorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
