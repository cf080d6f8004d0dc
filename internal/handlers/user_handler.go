package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for account reads.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers the caller's own account route.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users/me", h.HandleGetMe)
}

// RegisterAdminRoutes registers account routes on an admin-only router.
func (h *UserHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/users/:id", h.HandleGetUser)
}

func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.service.GetCurrentUser(c.UserContext(), middleware.Email(c))
	if err != nil {
		return respondError(c, "Could not retrieve user", err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid user ID", err)
	}
	user, err := h.service.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve user", err)
	}
	return c.JSON(user)
}
