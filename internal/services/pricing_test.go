package services_test

import (
	"testing"

	"orderhub/internal/models"
	"orderhub/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestCalcOrderPrices(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "a", Quantity: 2, Price: 100},
		{ProductID: "b", Quantity: 1, Price: 50},
		{ProductID: "c", Quantity: 0, Price: 999},
	}

	got := services.CalcOrderPrices(items, 10, services.DefaultTaxRate)

	assert.Equal(t, models.PriceSummary{ItemsPrice: 250, TaxPrice: 45, ShippingPrice: 10, TotalPrice: 305}, got)
}

func TestCalcOrderPrices_RoundsTaxAndTotal(t *testing.T) {
	items := []models.OrderItem{{ProductID: "a", Quantity: 3, Price: 19.99}}

	got := services.CalcOrderPrices(items, 0, 0.18)

	assert.Equal(t, 59.97, got.ItemsPrice)
	assert.Equal(t, 10.79, got.TaxPrice)
	assert.Equal(t, 70.76, got.TotalPrice)
}

func TestCalcOrderPrices_Empty(t *testing.T) {
	got := services.CalcOrderPrices(nil, 5, 0.18)

	assert.Equal(t, 0.0, got.ItemsPrice)
	assert.Equal(t, 5.0, got.TotalPrice)
}

func TestSumTotals(t *testing.T) {
	orders := []models.Order{{TotalPrice: 0.1}, {TotalPrice: 0.2}}
	assert.Equal(t, 0.3, services.SumTotals(orders))
}
