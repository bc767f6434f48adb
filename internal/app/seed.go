package app

import (
	"context"
	"errors"
	"fmt"

	"orderhub/internal/models"
	"orderhub/internal/repositories"
	"orderhub/internal/services"
)

const demoShippingFee = 10

// Seed populates demo products and orders. It does nothing when the demo
// products already exist.
func Seed(ctx context.Context, products repositories.ProductRepository, orders repositories.OrderRepository, taxRate float64) error {
	catalog := []models.Product{
		{ID: "prod-1", Name: "Laptop", Description: "High performance laptop", Price: 1200.00, Stock: 10},
		{ID: "prod-2", Name: "Keyboard", Description: "Mechanical keyboard", Price: 75.00, Stock: 25},
		{ID: "prod-3", Name: "Mouse", Description: "Ergonomic wireless mouse", Price: 25.00, Stock: 50},
	}

	if _, err := products.GetByID(ctx, catalog[0].ID); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("check seed state: %w", err)
	}

	for i := range catalog {
		if err := products.Create(ctx, &catalog[i]); err != nil {
			return fmt.Errorf("seed product %s: %w", catalog[i].Name, err)
		}
	}

	demo := []models.Order{
		{
			UserID: "demo-user",
			Items: []models.OrderItem{
				{ProductID: "prod-1", Name: "Laptop", Quantity: 1, Price: 1200.00},
				{ProductID: "prod-3", Name: "Mouse", Quantity: 2, Price: 25.00},
			},
			ShippingInfo: models.ShippingInfo{Address: "1 Demo Street", City: "Springfield", Country: "US"},
		},
		{
			UserID: "demo-user",
			Items: []models.OrderItem{
				{ProductID: "prod-2", Name: "Keyboard", Quantity: 1, Price: 75.00},
			},
		},
	}
	for i := range demo {
		demo[i].ApplyPrices(services.CalcOrderPrices(demo[i].Items, demoShippingFee, taxRate))
		if err := orders.Create(ctx, &demo[i]); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
	}
	return nil
}
