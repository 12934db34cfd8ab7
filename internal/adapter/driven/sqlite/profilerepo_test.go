package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

func TestProfileRepo_GetEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)

	u, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestProfileRepo_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	want := model.User{
		ID:        "u1",
		FirstName: "Worachot",
		LastName:  "T",
		Email:     "worachot.t@kkumail.com",
		Role:      "student",
		Type:      "undergrad",
		Confirmed: true,
		Image:     "https://img.example/u1.png",
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestProfileRepo_SaveReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.User{ID: "u1", Email: "a@example.com"}))
	require.NoError(t, repo.Save(ctx, model.User{ID: "u2", Email: "b@example.com"}))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u2", got.ID)
	assert.False(t, got.Confirmed)

	var rows int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM profile`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestProfileRepo_Clear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.User{ID: "u1"}))
	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
