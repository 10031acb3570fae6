package sos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactsOrderedByPriority(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", "Mamma", "+39 333 1111111", "madre", 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-1", "Giulia", "+39 333 2222222", "amica", 1)
	require.NoError(t, err)

	contacts, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Giulia", contacts[0].Name)
	assert.Equal(t, "Mamma", contacts[1].Name)
}

func TestAddRequiresNameAndPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Add(context.Background(), "user-1", "", "+39 333 1111111", "", 1)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Add(context.Background(), "user-1", "Mamma", "", "", 1)
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestUpdateMergesFields(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	c, err := svc.Add(ctx, "user-1", "Mamma", "+39 333 1111111", "madre", 1)
	require.NoError(t, err)

	phone := "+39 333 9999999"
	updated, err := svc.Update(ctx, "user-1", c.ID, UpdateInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Mamma", updated.Name)
}

func TestContactsScopedToUser(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	c, err := svc.Add(ctx, "user-1", "Mamma", "+39 333 1111111", "madre", 1)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-2", c.ID, UpdateInput{})
	assert.ErrorIs(t, err, ErrContactNotFound)

	err = svc.Remove(ctx, "user-2", c.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestRemove(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	c, err := svc.Add(ctx, "user-1", "Mamma", "+39 333 1111111", "madre", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "user-1", c.ID))
	contacts, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
