package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderhub/internal/models"
	"orderhub/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTransitionConcurrency bounds how many orders of one batch run at once.
const DefaultTransitionConcurrency = 8

// OrderFailure reports an order that was not transitioned.
type OrderFailure struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
	Error   string `json:"error"`
}

// SideEffectFailure reports a step that failed after an order was accepted for
// transition: a stock adjustment or the notification write. The status write stands.
type SideEffectFailure struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId,omitempty"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

// TransitionResult is the outcome of a batch transition. Lists follow request order.
type TransitionResult struct {
	Updated       []models.Order        `json:"updatedOrders"`
	Notifications []models.Notification `json:"notifications"`
	Failed        []OrderFailure        `json:"failed"`
	Warnings      []SideEffectFailure   `json:"warnings"`
}

// OrderPage is one page of the administrative order listing.
type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	TotalOrders int64          `json:"totalOrders"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	TotalAmount float64        `json:"totalAmount"`
}

// OrderServiceDeps groups the collaborators of OrderService.
type OrderServiceDeps struct {
	Orders        repositories.OrderRepository
	Products      repositories.ProductRepository
	Ledger        *StockLedger
	Notifications *NotificationService
	Notifier      Notifier
	Events        EventPublisher
	Logger        *zap.Logger
	// Concurrency bounds parallel orders per batch; zero means DefaultTransitionConcurrency.
	Concurrency int
}

// OrderService handles business logic related to orders. It owns the order
// state machine and drives the stock and notification side effects of each transition.
type OrderService struct {
	orderRepo     repositories.OrderRepository
	productRepo   repositories.ProductRepository
	ledger        *StockLedger
	notifications *NotificationService
	notifier      Notifier
	events        EventPublisher
	orderLocks    *keyedMutex
	concurrency   int
	logger        *zap.Logger
	now           func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(deps OrderServiceDeps) *OrderService {
	s := &OrderService{
		orderRepo:     deps.Orders,
		productRepo:   deps.Products,
		ledger:        deps.Ledger,
		notifications: deps.Notifications,
		notifier:      deps.Notifier,
		events:        deps.Events,
		orderLocks:    newKeyedMutex(),
		concurrency:   deps.Concurrency,
		logger:        deps.Logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultTransitionConcurrency
	}
	return s
}

// orderOutcome collects what happened to one order of a batch.
type orderOutcome struct {
	order        *models.Order
	notification *models.Notification
	failure      *OrderFailure
	warnings     []SideEffectFailure
}

// TransitionOrders moves every listed order to status. Orders are processed
// independently and possibly in parallel; the batch itself never fails.
// Once started, each order runs to completion even if ctx is cancelled.
func (s *OrderService) TransitionOrders(ctx context.Context, orderIDs []string, status string) *TransitionResult {
	target, known := models.ParseOrderStatus(status)
	work := context.WithoutCancel(ctx)

	outcomes := make([]orderOutcome, len(orderIDs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range orderIDs {
		g.Go(func() error {
			outcomes[i] = s.transitionOne(work, id, target, known)
			return nil
		})
	}
	_ = g.Wait()

	result := &TransitionResult{
		Updated:       []models.Order{},
		Notifications: []models.Notification{},
		Failed:        []OrderFailure{},
		Warnings:      []SideEffectFailure{},
	}
	updates := make([]models.StatusUpdate, 0, len(orderIDs))
	for _, out := range outcomes {
		result.Warnings = append(result.Warnings, out.warnings...)
		if out.failure != nil {
			result.Failed = append(result.Failed, *out.failure)
			continue
		}
		result.Updated = append(result.Updated, *out.order)
		updates = append(updates, models.StatusUpdate{OrderID: out.order.ID, Status: out.order.Status})
		if out.notification != nil {
			result.Notifications = append(result.Notifications, *out.notification)
		}
	}

	if len(updates) > 0 {
		s.notifier.PushGlobal(EventOrderUpdated, updates)
	}

	s.logger.Info("batch transition finished",
		zap.String("status", status),
		zap.Int("requested", len(orderIDs)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

func (s *OrderService) transitionOne(ctx context.Context, orderID string, target models.OrderStatus, known bool) orderOutcome {
	unlock := s.orderLocks.Lock(orderID)
	defer unlock()

	fail := func(err error) orderOutcome {
		s.logger.Warn("order transition rejected", zap.String("order_id", orderID), zap.Error(err))
		return orderOutcome{failure: &OrderFailure{OrderID: orderID, Reason: Reason(err), Error: err.Error()}}
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		return fail(fmt.Errorf("%w: %w", ErrStorage, err))
	}
	if !known {
		return fail(fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target))
	}
	from := order.Status
	if !from.CanTransitionTo(target) {
		return fail(fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target))
	}

	out := orderOutcome{}
	warn := func(productID string, err error) {
		s.logger.Warn("order side effect failed",
			zap.String("order_id", orderID),
			zap.String("product_id", productID),
			zap.Error(err))
		out.warnings = append(out.warnings, SideEffectFailure{
			OrderID:   orderID,
			ProductID: productID,
			Reason:    Reason(err),
			Error:     err.Error(),
		})
	}

	productIDs, productNames := s.applyStock(ctx, order, target.StockDelta(), warn)

	order.MarkStatus(target, s.now())
	if err := s.orderRepo.SaveStatus(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			failed := fail(fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
			failed.warnings = out.warnings
			return failed
		}
		out.failure = &OrderFailure{OrderID: orderID, Reason: ReasonStorage, Error: err.Error()}
		s.logger.Error("order status write failed", zap.String("order_id", orderID), zap.Error(err))
		return out
	}
	out.order = order

	if len(productIDs) > 0 {
		n, err := s.notifications.Create(ctx, &models.Notification{
			UserID:     order.UserID,
			Type:       models.NotificationOrder,
			Title:      orderTitle(order.ID),
			Message:    fmt.Sprintf("Order status updated to %q for: %s", target, strings.Join(productNames, ", ")),
			OrderID:    order.ID,
			ProductIDs: productIDs,
		})
		if err != nil {
			warn("", err)
		} else {
			out.notification = n
		}
	}

	evt := models.OrderStatusChanged{OrderID: order.ID, UserID: order.UserID, From: from, To: target, At: s.now()}
	if err := s.events.PublishStatusChanged(ctx, evt); err != nil {
		s.logger.Warn("status event not published", zap.String("order_id", orderID), zap.Error(err))
	}
	return out
}

// applyStock resolves each line item to its current product, adjusts stock by
// sign*quantity and returns the distinct ids and names of resolved products.
// Failures are reported per item and never stop the remaining items.
func (s *OrderService) applyStock(ctx context.Context, order *models.Order, sign int, warn func(string, error)) ([]string, []string) {
	seen := make(map[string]bool, len(order.Items))
	var ids, names []string

	for _, item := range order.Items {
		if item.ProductID == "" {
			continue
		}
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if sign != 0 {
				if errors.Is(err, repositories.ErrNotFound) {
					warn(item.ProductID, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID))
				} else {
					warn(item.ProductID, fmt.Errorf("%w: %w", ErrStorage, err))
				}
			}
			continue
		}

		if sign != 0 && item.Quantity > 0 {
			if _, err := s.ledger.Adjust(ctx, product.ID, sign*item.Quantity); err != nil {
				warn(product.ID, err)
			}
		}

		if !seen[product.ID] {
			seen[product.ID] = true
			ids = append(ids, product.ID)
			if product.Name != "" {
				names = append(names, product.Name)
			}
		}
	}
	return ids, names
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return order, nil
}

// ListOrders returns one page of all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	orders, total, err := s.orderRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &OrderPage{
		Orders:      orders,
		TotalOrders: total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		TotalAmount: SumTotals(orders),
	}, nil
}

// ListUserOrders returns the orders owned by userID.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return orders, nil
}

// DeleteOrder removes an order without passing through the state machine.
// Stock and notifications are left untouched.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	unlock := s.orderLocks.Lock(id)
	defer unlock()

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.logger.Info("order deleted", zap.String("order_id", id))
	return nil
}
