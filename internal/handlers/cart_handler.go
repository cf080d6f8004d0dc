package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for shopping carts.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{service: service, validate: validate}
}

// RegisterRoutes registers the caller's cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddLine)
	cartRoutes.Put("/:id", h.HandleUpdateLine)
	cartRoutes.Delete("/:id", h.HandleDeleteLine)
}

// RegisterAdminRoutes registers cart routes on an admin-only router.
func (h *CartHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/users/:userId/cart", h.HandleGetUserCart)
}

type AddCartLineRequest struct {
	BookID   uint `json:"book_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	lines, err := h.service.ListCart(c.UserContext(), middleware.Email(c))
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(lines)
}

func (h *CartHandler) HandleAddLine(c *fiber.Ctx) error {
	var req AddCartLineRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	line, err := h.service.AddLine(c.UserContext(), middleware.Email(c), req.BookID, req.Quantity)
	if err != nil {
		return respondError(c, "Could not add book to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

func (h *CartHandler) HandleUpdateLine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid cart line ID", err)
	}
	var req UpdateCartLineRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	line, err := h.service.UpdateLine(c.UserContext(), middleware.Email(c), id, req.Quantity)
	if err != nil {
		return respondError(c, "Could not update cart line", err)
	}
	return c.JSON(line)
}

func (h *CartHandler) HandleDeleteLine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid cart line ID", err)
	}
	if err := h.service.DeleteLine(c.UserContext(), middleware.Email(c), id); err != nil {
		return respondError(c, "Could not delete cart line", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetUserCart lets an admin read any user's cart.
func (h *CartHandler) HandleGetUserCart(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, "Invalid user ID", err)
	}
	lines, err := h.service.ListCartForUserID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(lines)
}
