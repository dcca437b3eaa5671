package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// JobController handles repair jobs and their attachments.
type JobController struct {
	jobs        *services.JobService
	attachments *services.AttachmentService
	log         *slog.Logger
}

func NewJobController(jobs *services.JobService, attachments *services.AttachmentService, log *slog.Logger) *JobController {
	return &JobController{jobs: jobs, attachments: attachments, log: log}
}

// Create books a new repair job.
func (h *JobController) Create(c *gin.Context) {
	var input services.CreateJobInput
	if !bindJSON(c, &input) {
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), utils.ActorFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

type jobQuery struct {
	pageQuery
	Status     models.JobStatus `form:"status"`
	CustomerID string           `form:"customerId" binding:"omitempty,uuid"`
	Search     string           `form:"search"`
}

// List returns a page of jobs visible to the caller.
func (h *JobController) List(c *gin.Context) {
	var q jobQuery
	if !bindQuery(c, &q) {
		return
	}
	jobs, total, err := h.jobs.List(c.Request.Context(), utils.ActorFrom(c), services.JobFilter{
		Status:     q.Status,
		CustomerID: optionalID(q.CustomerID),
		Search:     q.Search,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page(jobs, total, q.pageQuery))
}

// Get returns a job with its customer, technician and history.
func (h *JobController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type UpdateStatusInput struct {
	Status models.JobStatus `json:"status" binding:"required"`
	Notes  string           `json:"notes"`
}

// UpdateStatus moves the job to a new status and notifies the customer.
func (h *JobController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input UpdateStatusInput
	if !bindJSON(c, &input) {
		return
	}
	job, err := h.jobs.UpdateStatus(c.Request.Context(), utils.ActorFrom(c), id, input.Status, input.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type AssignInput struct {
	TechnicianID *uuid.UUID `json:"technicianId"`
}

// Assign sets or clears the technician on a job.
func (h *JobController) Assign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input AssignInput
	if !bindJSON(c, &input) {
		return
	}
	job, err := h.jobs.Assign(c.Request.Context(), utils.ActorFrom(c), id, input.TechnicianID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// History returns the status history of a job, oldest first.
func (h *JobController) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.jobs.History(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if history == nil {
		history = []models.StatusHistory{}
	}
	c.JSON(http.StatusOK, history)
}

// UploadAttachment stores the multipart "file" field against the job.
func (h *JobController) UploadAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxAttachmentSize+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input", map[string]string{"file": "is required"})
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer f.Close()

	attachment, err := h.attachments.Upload(c.Request.Context(), utils.ActorFrom(c), id, services.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// ListAttachments returns the photos uploaded for a job.
func (h *JobController) ListAttachments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachments, err := h.attachments.List(c.Request.Context(), utils.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if attachments == nil {
		attachments = []models.JobAttachment{}
	}
	c.JSON(http.StatusOK, attachments)
}

type TrackingEntry struct {
	Status    models.JobStatus `json:"status"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// TrackingResponse is the public view of a job. It leaves out staff and contact details.
type TrackingResponse struct {
	JobNumber           string           `json:"jobNumber"`
	Status              models.JobStatus `json:"status"`
	ApplianceType       string           `json:"applianceType"`
	Brand               string           `json:"brand,omitempty"`
	Model               string           `json:"model,omitempty"`
	EstimatedCompletion *time.Time       `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time       `json:"actualCompletion,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	History             []TrackingEntry  `json:"history"`
}

// Track is the public job lookup: GET /api/track/:jobNumber?email=
func (h *JobController) Track(c *gin.Context) {
	job, err := h.jobs.Track(c.Request.Context(), c.Param("jobNumber"), c.Query("email"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := TrackingResponse{
		JobNumber:           job.JobNumber,
		Status:              job.Status,
		ApplianceType:       job.ApplianceType,
		Brand:               job.Brand,
		Model:               job.Model,
		EstimatedCompletion: job.EstimatedCompletion,
		ActualCompletion:    job.ActualCompletion,
		CreatedAt:           job.CreatedAt,
		History:             make([]TrackingEntry, 0, len(job.StatusHistory)),
	}
	for _, entry := range job.StatusHistory {
		resp.History = append(resp.History, TrackingEntry{Status: entry.Status, Notes: entry.Notes, CreatedAt: entry.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}
