package services

import (
	"context"
	"testing"

	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCRUD(t *testing.T) {
	f := newFixture(t)
	svc := NewCustomerService(f.db)
	ctx := context.Background()

	c, err := svc.Create(ctx, actorOf(f.tech), CustomerInput{Name: " Bob Smith ", Email: "Bob@Example.com", Phone: "+15550001111"})
	require.NoError(t, err)
	assert.Equal(t, "Bob Smith", c.Name)
	assert.Equal(t, "bob@example.com", c.Email)
	assert.Equal(t, f.tech.ID, *c.CreatedByUserID)

	_, err = svc.Create(ctx, actorOf(f.admin), CustomerInput{Name: "Copy", Phone: "+15550001111"})
	assert.ErrorIs(t, err, ErrValidation)

	list, total, err := svc.List(ctx, actorOf(f.admin), CustomerFilter{Search: "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, c.ID, list[0].ID)

	notes := "prefers email"
	updated, err := svc.Update(ctx, actorOf(f.admin), c.ID, UpdateCustomerInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "prefers email", updated.Notes)

	got, err := svc.Get(ctx, actorOf(f.admin), f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, got.Jobs, 1)

	require.NoError(t, svc.Delete(ctx, actorOf(f.admin), c.ID))
	_, err = svc.Get(ctx, actorOf(f.admin), c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerDelete_KeepsCustomersWithOpenJobs(t *testing.T) {
	f := newFixture(t)
	svc := NewCustomerService(f.db)

	err := svc.Delete(context.Background(), actorOf(f.admin), f.customer.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCustomerAccess(t *testing.T) {
	f := newFixture(t)
	svc := NewCustomerService(f.db)
	portal := &models.Actor{ID: f.customer.ID, Role: models.RoleCustomer}

	_, _, err := svc.List(context.Background(), portal, CustomerFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.List(context.Background(), nil, CustomerFilter{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
