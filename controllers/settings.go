package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// SettingsController reads and updates the shop settings.
type SettingsController struct {
	settings *services.SettingsService
	log      *slog.Logger
}

func NewSettingsController(settings *services.SettingsService, log *slog.Logger) *SettingsController {
	return &SettingsController{settings: settings, log: log}
}

// Get returns the shop settings.
func (h *SettingsController) Get(c *gin.Context) {
	settings, err := h.settings.View(c.Request.Context(), utils.ActorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update applies a partial update; omitted fields keep their values.
func (h *SettingsController) Update(c *gin.Context) {
	var input services.SettingsInput
	if !bindJSON(c, &input) {
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), utils.ActorFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
