package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"orderhub/internal/models"
	"orderhub/internal/repositories"
	"orderhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStockLedger_ClampsAtEveryStep(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p", Name: "Widget", Stock: 2}))
	ledger := services.NewStockLedger(repo, zap.NewNop())

	steps := []struct {
		delta int
		want  int
	}{
		{-5, 0},
		{3, 3}, // unclamped running sum would be 0
		{-1, 2},
		{-2, 0},
		{-1, 0},
		{4, 4},
	}
	for _, step := range steps {
		got, err := ledger.Adjust(ctx, "p", step.delta)
		require.NoError(t, err)
		assert.Equal(t, step.want, got)
	}

	product, err := repo.GetByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 4, product.Stock)
}

func TestStockLedger_ConcurrentAdjustmentsLoseNoUpdates(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "a", Name: "Alpha", Stock: 100}))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "b", Name: "Beta", Stock: 0}))
	ledger := services.NewStockLedger(repo, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := ledger.Adjust(ctx, "a", 1)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := ledger.Adjust(ctx, "a", -1)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := ledger.Adjust(ctx, "b", 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, _ := repo.GetByID(ctx, "a")
	b, _ := repo.GetByID(ctx, "b")
	assert.Equal(t, 100, a.Stock)
	assert.Equal(t, 100, b.Stock)
}

func TestStockLedger_ProductNotFound(t *testing.T) {
	ledger := services.NewStockLedger(repositories.NewMockProductRepository(), zap.NewNop())

	_, err := ledger.Adjust(context.Background(), "missing", -1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Equal(t, services.ReasonProductNotFound, services.Reason(err))
}

func TestStockLedger_StorageErrors(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	ledger := services.NewStockLedger(mockRepo, zap.NewNop())

	mockRepo.On("GetByID", mock.Anything, "p").Return(nil, errors.New("connection reset")).Once()
	_, err := ledger.Adjust(ctx, "p", 1)
	assert.ErrorIs(t, err, services.ErrStorage)

	mockRepo.On("GetByID", mock.Anything, "p").Return(&models.Product{ID: "p", Stock: 1}, nil).Once()
	mockRepo.On("UpdateStock", mock.Anything, "p", 0).Return(errors.New("disk full")).Once()
	_, err = ledger.Adjust(ctx, "p", -3)
	assert.ErrorIs(t, err, services.ErrStorage)
	assert.Contains(t, err.Error(), "disk full")

	// product deleted between read and write
	mockRepo.On("GetByID", mock.Anything, "p").Return(&models.Product{ID: "p", Stock: 1}, nil).Once()
	mockRepo.On("UpdateStock", mock.Anything, "p", 2).Return(repositories.ErrNotFound).Once()
	_, err = ledger.Adjust(ctx, "p", 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
}
