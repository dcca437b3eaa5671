package services

import (
	"github.com/renelwllms/erepair1-sub001/models"
)

// authorize fails with Unauthenticated for a nil actor and Forbidden when the
// actor's role lacks the capability.
func authorize(actor *models.Actor, capability models.Capability) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.Role.Can(capability) {
		return newError(KindForbidden, "role %s may not perform this action", actor.Role)
	}
	return nil
}

// checkJobAccess restricts technicians to the jobs assigned to them.
func checkJobAccess(actor *models.Actor, job *models.Job) error {
	if actor.Role != models.RoleTechnician {
		return nil
	}
	if job.AssignedTechnicianID == nil || *job.AssignedTechnicianID != actor.ID {
		return newError(KindForbidden, "job %s is not assigned to you", job.JobNumber)
	}
	return nil
}
