package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

func TestCustomerValidation(t *testing.T) {
	t.Parallel()
	svc := NewCustomerService(newRepo(t), nil)

	_, err := svc.Create(context.Background(), transport.CustomerRequest{Email: "nope"})
	fields := fieldsOf(t, err)
	assert.Equal(t, "first name is required", fields["first_name"])
	assert.Equal(t, "phone is required", fields["phone"])
	assert.Equal(t, "invalid email address", fields["email"])
}

func TestCustomerCRUD(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	svc := NewCustomerService(newRepo(t), rec)
	ctx := context.Background()

	req := transport.CustomerRequest{
		FirstName: " Meena ", LastName: "Iyer", Phone: "9123456780",
		Email: "Meena@Example.com", GSTNumber: "29abcde1234f1z5",
	}
	c, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Meena", c.FirstName)
	assert.Equal(t, "meena@example.com", c.Email)
	assert.Equal(t, "29ABCDE1234F1Z5", c.GSTNumber)

	_, err = svc.Create(ctx, req)
	assert.True(t, errors.Is(err, ErrConflict), "duplicate email: %v", err)

	req.CompanyName = "Iyer Traders"
	req.Orders = []string{"PO-1", "PO-2"}
	updated, err := svc.Update(ctx, c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Iyer Traders", updated.CompanyName)
	assert.Len(t, updated.Orders, 2)

	rows, err := svc.Export(ctx, util.ParseListParams(nil, repo.CustomerSort))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Orders)
	assert.Equal(t, 0, rows[0].Enquiries)

	leads, err := svc.Leads(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, leads)

	_, err = svc.Leads(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, []string{events.CustomerCreated, events.CustomerUpdated, events.CustomerDeleted}, rec.types())
}
