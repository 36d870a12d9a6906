package handlers

import (
	"errors"

	"athlete-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

// engineError maps typed engine errors onto HTTP responses. Anything
// unrecognized is a 500.
func engineError(c *fiber.Ctx, err error) error {
	if ve, ok := services.IsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Message,
			"field": ve.Field,
		})
	}
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if errors.Is(err, services.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error", "cause": err.Error(),
	})
}
