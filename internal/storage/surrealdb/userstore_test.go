package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

func TestSaveAndGetUser(t *testing.T) {
	m := testManager(t)
	store := m.userStore
	ctx := context.Background()

	u := &models.User{
		UserID:       "sara",
		Email:        "sara@example.sa",
		PasswordHash: "$2a$10$fakehashfortesting",
		Role:         "user",
		CreatedAt:    time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveUser(ctx, u))

	got, err := store.GetUser(ctx, "sara")
	require.NoError(t, err)
	assert.Equal(t, "sara@example.sa", got.Email)
	assert.Equal(t, "$2a$10$fakehashfortesting", got.PasswordHash)
	assert.Equal(t, "user", got.Role)
}

func TestGetUserMissing(t *testing.T) {
	m := testManager(t)

	_, err := m.userStore.GetUser(context.Background(), "nobody")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestDeleteUser(t *testing.T) {
	m := testManager(t)
	store := m.userStore
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, &models.User{
		UserID: "sara", PasswordHash: "x", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.DeleteUser(ctx, "sara"))

	_, err := store.GetUser(ctx, "sara")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}
