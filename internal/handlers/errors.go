package handlers

import (
	"errors"
	"fmt"

	"bookstore/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError writes err as {"message", "code", "error"} with the status its code maps to.
func respondError(c *fiber.Ctx, message string, err error) error {
	code := errs.CodeOf(err)
	return c.Status(errs.HTTPStatus(code)).JSON(fiber.Map{
		"message": message,
		"code":    code,
		"error":   err.Error(),
	})
}

// parseBody parses the JSON body into req and runs its validate tags.
func parseBody(c *fiber.Ctx, validate *validator.Validate, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return err
	}
	return validate.Struct(req)
}

// invalidRequest answers 400 for an error returned by parseBody, listing the failed
// fields when validation was the cause.
func invalidRequest(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"code":    errs.CodeInvalidInput,
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"code":    errs.CodeInvalidInput,
		"errors":  errorMessages,
	})
}

// paramID reads a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errs.ErrInvalidInput, name)
	}
	return uint(id), nil
}
