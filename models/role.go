package models

import "github.com/google/uuid"

// Role is the closed set of account roles. Anything else has no capabilities.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleCustomer   Role = "CUSTOMER"
)

// Capability names an operation guarded by role.
type Capability string

const (
	CapUpdateJobStatus  Capability = "job:update-status"
	CapManageJobs       Capability = "job:manage"
	CapAssignTechnician Capability = "job:assign"
	CapManageCustomers  Capability = "customer:manage"
	CapManageQuotes     Capability = "quote:manage"
	CapConvertQuote     Capability = "quote:convert"
	CapManageInvoices   Capability = "invoice:manage"
	CapManageSettings   Capability = "settings:manage"
	CapViewEmailLogs    Capability = "email-log:view"
	CapManageUsers      Capability = "user:manage"
	CapViewReports      Capability = "report:view"
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapUpdateJobStatus:  true,
		CapManageJobs:       true,
		CapAssignTechnician: true,
		CapManageCustomers:  true,
		CapManageQuotes:     true,
		CapConvertQuote:     true,
		CapManageInvoices:   true,
		CapManageSettings:   true,
		CapViewEmailLogs:    true,
		CapManageUsers:      true,
		CapViewReports:      true,
	},
	RoleTechnician: {
		CapUpdateJobStatus: true,
		CapManageJobs:      true,
		CapManageCustomers: true,
		CapManageQuotes:    true,
		CapConvertQuote:    true,
		CapManageInvoices:  true,
	},
	RoleCustomer: {},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
