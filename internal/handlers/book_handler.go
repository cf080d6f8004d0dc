package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// BookHandler handles HTTP requests for the catalog.
type BookHandler struct {
	service  *services.BookService
	validate *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService, validate *validator.Validate) *BookHandler {
	return &BookHandler{service: service, validate: validate}
}

// RegisterRoutes registers the book routes. Reads need a token, writes need an admin.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleGetBooks)
	bookRoutes.Get("/category/:id", h.HandleGetBooksByCategory)
	bookRoutes.Get("/:id", h.HandleGetBookByID)
	bookRoutes.Post("/", middleware.AdminOnly(), h.HandleCreateBook)
	bookRoutes.Put("/:id", middleware.AdminOnly(), h.HandleUpdateBook)
	bookRoutes.Delete("/:id", middleware.AdminOnly(), h.HandleDeleteBook)
}

// BookRequest is the body of create and update requests. Price accepts a JSON number
// or a decimal string.
type BookRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Author      string          `json:"author" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  *uint           `json:"category_id" validate:"omitempty,gt=0"`
}

func (r BookRequest) toModel(id uint) *models.Book {
	return &models.Book{
		ID:          id,
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
	}
}

func (h *BookHandler) HandleGetBooks(c *fiber.Ctx) error {
	books, err := h.service.GetAllBooks(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve books", err)
	}
	return c.JSON(books)
}

func (h *BookHandler) HandleGetBookByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid book ID", err)
	}
	book, err := h.service.GetBookByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve book", err)
	}
	return c.JSON(book)
}

func (h *BookHandler) HandleGetBooksByCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid category ID", err)
	}
	books, err := h.service.ListBooksByCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve books", err)
	}
	return c.JSON(books)
}

func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var req BookRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	book := req.toModel(0)
	if err := h.service.CreateBook(c.UserContext(), book); err != nil {
		return respondError(c, "Could not create book", err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (h *BookHandler) HandleUpdateBook(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid book ID", err)
	}
	var req BookRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	if err := h.service.UpdateBook(c.UserContext(), req.toModel(id)); err != nil {
		return respondError(c, "Could not update book", err)
	}
	book, err := h.service.GetBookByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve book", err)
	}
	return c.JSON(book)
}

func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid book ID", err)
	}
	if err := h.service.DeleteBook(c.UserContext(), id); err != nil {
		return respondError(c, "Could not delete book", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
