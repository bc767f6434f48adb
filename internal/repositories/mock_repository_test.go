package repositories_test

import (
	"context"
	"testing"

	"orderhub/internal/models"
	"orderhub/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockNotificationRepository_NewestFirstAndClear(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockNotificationRepository()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		n := &models.Notification{UserID: "u", Title: title}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: "v"}))

	list, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, repo.MarkRead(ctx, ids[0]))
	list, _ = repo.ListByUser(ctx, "u")
	assert.True(t, list[2].Read)

	removed, err := repo.DeleteByUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	left, err := repo.ListByUser(ctx, "v")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestMockOrderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()

	order := &models.Order{UserID: "u", Items: []models.OrderItem{{ProductID: "p", Quantity: 1}}}
	require.NoError(t, repo.Create(ctx, order))

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	fetched.Items[0].Quantity = 99

	again, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, models.StatusProcessing, again.Status)

	page, total, err := repo.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, page)
}
