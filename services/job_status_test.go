package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatus_HistoryGrowsWithEachUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, discardLogger())
	ctx := context.Background()

	steps := []models.JobStatus{
		models.JobStatusDiagnosing,
		models.JobStatusAwaitingParts,
		models.JobStatusInProgress,
		models.JobStatusReadyForPickup,
		models.JobStatusClosed,
	}
	for _, status := range steps {
		job, err := svc.UpdateStatus(ctx, actorOf(f.tech), f.job.ID, status, "")
		require.NoError(t, err)
		assert.Equal(t, status, job.Status)
	}

	var history []models.StatusHistory
	require.NoError(t, f.db.Where("job_id = ?", f.job.ID).Order("created_at ASC").Find(&history).Error)
	require.Len(t, history, len(steps))
	for i, h := range history {
		assert.Equal(t, steps[i], h.Status)
		assert.Equal(t, "Status changed to "+string(steps[i]), h.Notes)
		require.NotNil(t, h.ActorID)
		assert.Equal(t, f.tech.ID, *h.ActorID)
	}
}

func TestUpdateStatus_ReturnsExpandedJob(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, discardLogger())

	job, err := svc.UpdateStatus(context.Background(), actorOf(f.admin), f.job.ID, models.JobStatusDiagnosing, "checking drum")
	require.NoError(t, err)
	require.NotNil(t, job.Customer)
	assert.Equal(t, "Jane Doe", job.Customer.Name)
	require.NotNil(t, job.AssignedTechnician)
	assert.Equal(t, f.tech.ID, job.AssignedTechnician.ID)

	var h models.StatusHistory
	require.NoError(t, f.db.First(&h, "job_id = ?", f.job.ID).Error)
	assert.Equal(t, "checking drum", h.Notes)
}

func TestUpdateStatus_ClosedStampsCompletion(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, discardLogger())
	ctx := context.Background()

	job, err := svc.UpdateStatus(ctx, actorOf(f.admin), f.job.ID, models.JobStatusClosed, "")
	require.NoError(t, err)
	require.NotNil(t, job.ActualCompletion)

	job, err = svc.UpdateStatus(ctx, actorOf(f.admin), f.job.ID, models.JobStatusInProgress, "reopened")
	require.NoError(t, err)
	assert.Nil(t, job.ActualCompletion)
}

func TestUpdateStatus_SameStatusIsRejected(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, discardLogger())

	_, err := svc.UpdateStatus(context.Background(), actorOf(f.tech), f.job.ID, models.JobStatusOpen, "")
	assert.ErrorIs(t, err, ErrNoOpSameStatus)
	assert.Equal(t, KindNoOpSameStatus, KindOf(err))
	assert.Zero(t, countRows(t, f.db, &models.StatusHistory{}, "job_id = ?", f.job.ID))
}

func TestUpdateStatus_Guards(t *testing.T) {
	f := newFixture(t)
	unassigned := createJob(t, f.db, "JOB-00002", f.customer, nil)
	customerUser := createUser(t, f.db, "portal@example.com", models.RoleCustomer)
	svc := NewJobService(f.db, discardLogger())

	tests := []struct {
		name   string
		actor  *models.Actor
		jobID  uuid.UUID
		status models.JobStatus
		kind   ErrorKind
	}{
		{"unauthenticated", nil, f.job.ID, models.JobStatusDiagnosing, KindUnauthenticated},
		{"customer role", actorOf(customerUser), f.job.ID, models.JobStatusDiagnosing, KindForbidden},
		{"unknown role", &models.Actor{ID: uuid.New(), Role: "MANAGER"}, f.job.ID, models.JobStatusDiagnosing, KindForbidden},
		{"missing job", actorOf(f.admin), uuid.New(), models.JobStatusDiagnosing, KindNotFound},
		{"other technician", actorOf(f.otherTech), f.job.ID, models.JobStatusDiagnosing, KindForbidden},
		{"technician on unassigned job", actorOf(f.tech), unassigned.ID, models.JobStatusDiagnosing, KindForbidden},
		{"unknown status", actorOf(f.admin), f.job.ID, "ON_HOLD", KindValidation},
		{"unknown status on another technician's job", actorOf(f.otherTech), f.job.ID, "ON_HOLD", KindForbidden},
		{"unknown status on a missing job", actorOf(f.admin), uuid.New(), "ON_HOLD", KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(context.Background(), tt.actor, tt.jobID, tt.status, "")
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	assert.Zero(t, countRows(t, f.db, &models.StatusHistory{}, "1 = 1"))
	var job models.Job
	require.NoError(t, f.db.First(&job, "id = ?", f.job.ID).Error)
	assert.Equal(t, models.JobStatusOpen, job.Status)
}

func TestUpdateStatus_AdminMayUpdateAnyJob(t *testing.T) {
	f := newFixture(t)
	unassigned := createJob(t, f.db, "JOB-00002", f.customer, nil)
	svc := NewJobService(f.db, discardLogger())

	_, err := svc.UpdateStatus(context.Background(), actorOf(f.admin), unassigned.ID, models.JobStatusDiagnosing, "")
	assert.NoError(t, err)
}

func TestUpdateStatus_PublishesAfterCommit(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	svc := NewJobService(f.db, discardLogger(), obs)

	_, err := svc.UpdateStatus(context.Background(), actorOf(f.tech), f.job.ID, models.JobStatusReadyForPickup, "all fixed")
	require.NoError(t, err)

	require.Len(t, obs.changes, 1)
	change := obs.changes[0]
	assert.Equal(t, models.JobStatusOpen, change.OldStatus)
	assert.Equal(t, models.JobStatusReadyForPickup, change.NewStatus)
	assert.Equal(t, "all fixed", change.Note)
	assert.Equal(t, f.tech.ID, change.Actor.ID)
	require.NotNil(t, change.Job.Customer)

	_, err = svc.UpdateStatus(context.Background(), actorOf(f.tech), f.job.ID, models.JobStatusReadyForPickup, "")
	require.Error(t, err)
	assert.Len(t, obs.changes, 1, "rejected updates publish nothing")
}

type panickingObserver struct{}

func (panickingObserver) JobStatusChanged(ctx context.Context, change StatusChange) {
	panic("mail server exploded")
}

func TestUpdateStatus_ObserverPanicDoesNotFailUpdate(t *testing.T) {
	f := newFixture(t)
	after := &recordingObserver{}
	svc := NewJobService(f.db, discardLogger(), panickingObserver{}, after)

	job, err := svc.UpdateStatus(context.Background(), actorOf(f.tech), f.job.ID, models.JobStatusDiagnosing, "")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDiagnosing, job.Status)
	assert.Len(t, after.changes, 1)
}

func TestStatusHistory_IsImmutable(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.db, discardLogger())
	_, err := svc.UpdateStatus(context.Background(), actorOf(f.admin), f.job.ID, models.JobStatusDiagnosing, "")
	require.NoError(t, err)

	var h models.StatusHistory
	require.NoError(t, f.db.First(&h, "job_id = ?", f.job.ID).Error)
	h.Notes = "rewritten"
	err = f.db.Save(&h).Error
	assert.ErrorIs(t, err, models.ErrImmutable)
}
