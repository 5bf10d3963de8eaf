package repositories_test

import (
	"context"
	"testing"

	"productapi/internal/models"
	"productapi/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProductRepository(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()

	first := &models.Product{Name: "Laptop", Price: 1200, Availability: true}
	second := &models.Product{Name: "Keyboard", Price: 75, Availability: true}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2), products[0].ID)

	second.Availability = false
	require.NoError(t, repo.Update(ctx, second))
	fetched, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, fetched.Availability)

	require.NoError(t, repo.Delete(ctx, first))
	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.ErrorIs(t, repo.Update(ctx, first), repositories.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, first), repositories.ErrProductNotFound)
}
