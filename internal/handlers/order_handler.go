package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	// placeLimit throttles order placement; nil disables it.
	placeLimit *middleware.RateLimiter
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, validate *validator.Validate, placeLimit *middleware.RateLimiter) *OrderHandler {
	return &OrderHandler{
		service:    service,
		validate:   validate,
		placeLimit: placeLimit,
	}
}

// RegisterRoutes registers the routes a caller uses for their own orders.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/items", h.HandleGetOrderItems)
	if h.placeLimit != nil {
		orderRoutes.Post("/", middleware.RateLimit(h.placeLimit), h.HandlePlaceOrder)
	} else {
		orderRoutes.Post("/", h.HandlePlaceOrder)
	}
	orderRoutes.Put("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers order routes on an admin-only router.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/orders/:id", h.HandleAdminGetOrder)
	admin.Get("/orders/:id/items", h.HandleAdminGetOrderItems)
	admin.Put("/orders/:id/deliver", h.HandleDeliverOrder)
	admin.Get("/users/:userId/orders", h.HandleAdminGetUserOrders)
}

// PlaceOrderRequest is the body of POST /orders. The items come from the caller's cart.
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
}

// HandlePlaceOrder converts the caller's cart into an order.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	order, err := h.service.PlaceOrder(c.UserContext(), middleware.Email(c), req.ShippingAddress)
	if err != nil {
		return respondError(c, "Could not place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders returns the caller's order history, oldest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrderHistory(c.UserContext(), middleware.Email(c))
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid order ID", err)
	}
	order, err := h.service.GetOrderForOwner(c.UserContext(), middleware.Email(c), id)
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleGetOrderItems(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid order ID", err)
	}
	items, err := h.service.ListOrderItemsForOwner(c.UserContext(), middleware.Email(c), id)
	if err != nil {
		return respondError(c, "Could not retrieve order items", err)
	}
	return c.JSON(items)
}

// HandleCancelOrder cancels one of the caller's pending orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid order ID", err)
	}
	order, err := h.service.Cancel(c.UserContext(), middleware.Email(c), id)
	if err != nil {
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleAdminGetOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid order ID", err)
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleAdminGetOrderItems(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid order ID", err)
	}
	items, err := h.service.ListOrderItems(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve order items", err)
	}
	return c.JSON(items)
}

func (h *OrderHandler) HandleAdminGetUserOrders(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, "Invalid user ID", err)
	}
	orders, err := h.service.ListOrderHistoryForOwnerID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleDeliverOrder marks a pending order delivered.
func (h *OrderHandler) HandleDeliverOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid order ID", err)
	}
	order, err := h.service.Deliver(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not deliver order", err)
	}
	return c.JSON(order)
}
