package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// ReportController serves the dashboard, analytics and email logs.
type ReportController struct {
	reports *services.ReportService
	logs    *services.EmailLogService
	log     *slog.Logger
}

func NewReportController(reports *services.ReportService, logs *services.EmailLogService, log *slog.Logger) *ReportController {
	return &ReportController{reports: reports, logs: logs, log: log}
}

// Dashboard returns job counts and revenue for the current month.
func (h *ReportController) Dashboard(c *gin.Context) {
	dashboard, err := h.reports.Dashboard(c.Request.Context(), utils.ActorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Analytics returns revenue growth and top customers for admins.
func (h *ReportController) Analytics(c *gin.Context) {
	analytics, err := h.reports.Analytics(c.Request.Context(), utils.ActorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

type emailLogQuery struct {
	pageQuery
	Status          models.EmailStatus `form:"status"`
	Type            models.EmailType   `form:"type"`
	Channel         string             `form:"channel" binding:"omitempty,oneof=email sms"`
	Recipient       string             `form:"recipient"`
	RelatedEntityID string             `form:"relatedEntityId" binding:"omitempty,uuid"`
	From            string             `form:"from"`
	To              string             `form:"to"`
}

// EmailLogs lists notification attempts. from and to are YYYY-MM-DD days.
func (h *ReportController) EmailLogs(c *gin.Context) {
	var q emailLogQuery
	if !bindQuery(c, &q) {
		return
	}
	filter := services.EmailLogFilter{
		Status:          q.Status,
		Type:            q.Type,
		Channel:         q.Channel,
		Recipient:       q.Recipient,
		RelatedEntityID: optionalID(q.RelatedEntityID),
		Page:            q.Page,
		PageSize:        q.PageSize,
	}
	details := map[string]string{}
	if q.From != "" {
		if day, ok := utils.ParseDay(q.From, time.Local); ok {
			filter.From = day
		} else {
			details["from"] = "must be a YYYY-MM-DD date"
		}
	}
	if q.To != "" {
		if day, ok := utils.ParseDay(q.To, time.Local); ok {
			filter.To = day
		} else {
			details["to"] = "must be a YYYY-MM-DD date"
		}
	}
	if len(details) > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query", details)
		return
	}

	logs, total, err := h.logs.List(c.Request.Context(), utils.ActorFrom(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page(logs, total, q.pageQuery))
}
