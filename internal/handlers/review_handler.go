package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for book reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, validate *validator.Validate) *ReviewHandler {
	return &ReviewHandler{service: service, validate: validate}
}

// RegisterRoutes registers the review routes. Any user may read reviews; only the
// author may change or remove one.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/for-book/:bookId", h.HandleGetBookReviews)
	reviewRoutes.Get("/for-user/:userId", h.HandleGetUserReviews)
	reviewRoutes.Get("/:id", h.HandleGetReview)
	reviewRoutes.Post("/", h.HandleCreateReview)
	reviewRoutes.Put("/:id", h.HandleUpdateReview)
	reviewRoutes.Delete("/:id", h.HandleDeleteReview)
}

type CreateReviewRequest struct {
	BookID  uint   `json:"book_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid review ID", err)
	}
	review, err := h.service.GetReview(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve review", err)
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleGetBookReviews(c *fiber.Ctx) error {
	bookID, err := paramID(c, "bookId")
	if err != nil {
		return respondError(c, "Invalid book ID", err)
	}
	reviews, err := h.service.ListReviewsForBook(c.UserContext(), bookID)
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) HandleGetUserReviews(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, "Invalid user ID", err)
	}
	reviews, err := h.service.ListReviewsForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	review, err := h.service.CreateReview(c.UserContext(), middleware.Email(c), req.BookID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, "Could not create review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid review ID", err)
	}
	var req UpdateReviewRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return invalidRequest(c, err)
	}
	review, err := h.service.UpdateReview(c.UserContext(), middleware.Email(c), id, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, "Could not update review", err)
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, "Invalid review ID", err)
	}
	if err := h.service.DeleteReview(c.UserContext(), middleware.Email(c), id); err != nil {
		return respondError(c, "Could not delete review", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
