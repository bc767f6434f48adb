package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"orderhub/internal/middleware"
	"orderhub/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler. timeout bounds how long a
// transition request waits for its batch; zero waits indefinitely.
func NewOrderHandler(service *services.OrderService, timeout time.Duration, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, timeout: timeout, logger: logger}
}

type transitionRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,dive,required"`
	Status   string   `json:"status" validate:"required"`
}

// RegisterRoutes registers the order routes. auth must already populate the identity.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRole(services.RoleAdmin)

	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/transition", admin, h.HandleTransition)
	orderRoutes.Get("/", admin, h.HandleListOrders)
	orderRoutes.Get("/me", h.HandleMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Delete("/:id", admin, h.HandleDeleteOrder)
}

// HandleTransition applies one status to a batch of orders. Per-order failures
// are reported inline; a well-formed request always answers 200.
func (h *OrderHandler) HandleTransition(c *fiber.Ctx) error {
	var req transitionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	done := make(chan *services.TransitionResult, 1)
	go func() {
		done <- h.service.TransitionOrders(ctx, req.OrderIDs, req.Status)
	}()

	select {
	case result := <-done:
		return c.JSON(fiber.Map{
			"success":       len(result.Failed) == 0,
			"message":       fmt.Sprintf("%d of %d orders updated to %s", len(result.Updated), len(req.OrderIDs), req.Status),
			"updatedOrders": result.Updated,
			"notifications": result.Notifications,
			"failed":        result.Failed,
			"warnings":      result.Warnings,
		})
	case <-ctx.Done():
		h.logger.Warn("transition request timed out; batch keeps running",
			zap.Int("orders", len(req.OrderIDs)),
			zap.String("status", req.Status))
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"success": false,
			"message": "transition still in progress; completed orders are kept",
		})
	}
}

// HandleListOrders returns one page of all orders with their total amount.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	page, err := h.service.ListOrders(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"orders":      page.Orders,
		"totalOrders": page.TotalOrders,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"totalAmount": page.TotalAmount,
	})
}

// HandleMyOrders returns the orders of the acting user.
func (h *OrderHandler) HandleMyOrders(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	orders, err := h.service.ListUserOrders(c.UserContext(), identity.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// HandleGetOrderByID retrieves a single order. Users only see their own orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	identity := middleware.CurrentIdentity(c)
	if !identity.IsAdmin() && identity.UserID != order.UserID {
		return forbidden(c)
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

// HandleDeleteOrder removes an order outright.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Order deleted"})
}
