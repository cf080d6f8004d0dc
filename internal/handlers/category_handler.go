package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for book categories.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, validate *validator.Validate) *CategoryHandler {
	return &CategoryHandler{service: service, validate: validate}
}

// RegisterRoutes registers the category routes. Reads need a token, writes need an admin.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
	categoryRoutes.Post("/", middleware.AdminOnly(), h.HandleCreateCategory)
	categoryRoutes.Put("/:id", middleware.AdminOnly(), h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", middleware.AdminOnly(), h.HandleDeleteCategory)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"required,min=3,max=255"`
}

func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid category ID", err)
	}
	category, err := h.service.GetCategoryByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve category", err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.service.CreateCategory(c.UserContext(), category); err != nil {
		return respondError(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid category ID", err)
	}
	var req CategoryRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	category := &models.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := h.service.UpdateCategory(c.UserContext(), category); err != nil {
		return respondError(c, "Could not update category", err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid category ID", err)
	}
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, "Could not delete category", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
