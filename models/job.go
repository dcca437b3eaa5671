package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusOpen             JobStatus = "OPEN"
	JobStatusDiagnosing       JobStatus = "DIAGNOSING"
	JobStatusAwaitingApproval JobStatus = "AWAITING_APPROVAL"
	JobStatusAwaitingParts    JobStatus = "AWAITING_PARTS"
	JobStatusInProgress       JobStatus = "IN_PROGRESS"
	JobStatusReadyForPickup   JobStatus = "READY_FOR_PICKUP"
	JobStatusClosed           JobStatus = "CLOSED"
	JobStatusCancelled        JobStatus = "CANCELLED"
)

// JobStatuses lists every accepted job status in lifecycle order.
var JobStatuses = []JobStatus{
	JobStatusOpen,
	JobStatusDiagnosing,
	JobStatusAwaitingApproval,
	JobStatusAwaitingParts,
	JobStatusInProgress,
	JobStatusReadyForPickup,
	JobStatusClosed,
	JobStatusCancelled,
}

func (s JobStatus) Valid() bool {
	for _, known := range JobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsClosed reports whether the status ends the repair and stamps the completion time.
func (s JobStatus) IsClosed() bool {
	return s == JobStatusClosed
}

// IsReadyForPickup reports whether the customer should be told to collect the appliance.
func (s JobStatus) IsReadyForPickup() bool {
	return s == JobStatusReadyForPickup
}

type JobPriority string

const (
	PriorityLow    JobPriority = "LOW"
	PriorityNormal JobPriority = "NORMAL"
	PriorityHigh   JobPriority = "HIGH"
	PriorityUrgent JobPriority = "URGENT"
)

type Job struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	JobNumber string      `gorm:"uniqueIndex;not null" json:"jobNumber"`
	Status    JobStatus   `gorm:"type:varchar(32);index;not null" json:"status"`
	Priority  JobPriority `gorm:"type:varchar(16);default:'NORMAL'" json:"priority"`

	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	ApplianceType    string `gorm:"not null" json:"applianceType"`
	Brand            string `json:"brand,omitempty"`
	Model            string `json:"model,omitempty"`
	SerialNumber     string `json:"serialNumber,omitempty"`
	IssueDescription string `gorm:"type:text" json:"issueDescription,omitempty"`

	AssignedTechnicianID *uuid.UUID `gorm:"type:uuid;index" json:"assignedTechnicianId,omitempty"`
	AssignedTechnician   *User      `gorm:"foreignKey:AssignedTechnicianID" json:"assignedTechnician,omitempty"`
	CreatedByID          *uuid.UUID `gorm:"type:uuid" json:"createdById,omitempty"`
	CreatedBy            *User      `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`

	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time `json:"actualCompletion,omitempty"`

	StatusHistory []StatusHistory `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"statusHistory,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusOpen
	}
	return
}
