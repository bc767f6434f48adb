package services

import (
	"orderhub/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to the items subtotal when no rate is configured.
const DefaultTaxRate = 0.18

// CalcOrderPrices computes the totals of an order from its price snapshots.
// Tax and total are rounded to two decimals. Items with a non-positive quantity are ignored.
func CalcOrderPrices(items []models.OrderItem, shippingFee, taxRate float64) models.PriceSummary {
	itemsPrice := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		itemsPrice = itemsPrice.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shipping := decimal.NewFromFloat(shippingFee)
	tax := itemsPrice.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	total := itemsPrice.Add(tax).Add(shipping).Round(2)

	return models.PriceSummary{
		ItemsPrice:    itemsPrice.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}

// SumTotals adds up the total price of orders without float drift.
func SumTotals(orders []models.Order) float64 {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(decimal.NewFromFloat(o.TotalPrice))
	}
	return sum.InexactFloat64()
}
