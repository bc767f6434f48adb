package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"orderhub/internal/middleware"
	"orderhub/internal/models"
	"orderhub/internal/services"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	service *services.NotificationService
	logger  *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: logger}
}

type createNotificationRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=order alert delivery promo"`
	Message string `json:"message"`
}

// RegisterRoutes registers the notification routes. auth must already populate the identity.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	routes := router.Group("/notifications", auth)
	routes.Post("/", middleware.RequireRole(services.RoleAdmin), h.HandleCreate)
	routes.Get("/user/:userId", h.HandleListByUser)
	routes.Delete("/user/:userId", h.HandleClearUser)
	routes.Put("/mark-read/:id", h.HandleMarkRead)
	routes.Delete("/:id", h.HandleDelete)
}

// HandleCreate creates one notification per line item of an order.
func (h *NotificationHandler) HandleCreate(c *fiber.Ctx) error {
	var req createNotificationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	created, err := h.service.NotifyOrderItems(c.UserContext(), req.OrderID, models.NotificationType(req.Type), req.Message)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "notifications": created})
}

// HandleListByUser returns a user's notifications, most recent first.
func (h *NotificationHandler) HandleListByUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if !canAccessUser(c, userID) {
		return forbidden(c)
	}
	list, err := h.service.ListByUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "notifications": list})
}

// HandleClearUser deletes every notification of a user.
func (h *NotificationHandler) HandleClearUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if !canAccessUser(c, userID) {
		return forbidden(c)
	}
	removed, err := h.service.DeleteAllByUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "deleted": removed})
}

// HandleMarkRead flags one notification as read.
func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	id := c.Params("id")
	if ok, err := h.ownedBy(c, id); !ok {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Notification marked as read"})
}

// HandleDelete removes one notification.
func (h *NotificationHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if ok, err := h.ownedBy(c, id); !ok {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Notification deleted"})
}

// ownedBy loads notification id and reports whether the acting identity may
// modify it. When it returns false the response has already been written.
func (h *NotificationHandler) ownedBy(c *fiber.Ctx, id string) (bool, error) {
	n, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return false, respondError(c, h.logger, err)
	}
	if !canAccessUser(c, n.UserID) {
		return false, forbidden(c)
	}
	return true, nil
}

func canAccessUser(c *fiber.Ctx, userID string) bool {
	identity := middleware.CurrentIdentity(c)
	return identity != nil && (identity.IsAdmin() || identity.UserID == userID)
}
