package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ToggleCompletion(c *fiber.Ctx) error {
	input := toggleCompletionInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return apiError(c, fiber.StatusBadRequest, "userId is required")
	}

	completions, err := handler.commitments.ToggleCompletion(c.Params("id"), input.Date, input.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(completions)
}

// ListCompletions returns all rows including soft-deleted ones; the
// deleted flag is part of the wire contract so replicas can observe
// removals.
func (handler *Handler) ListCompletions(c *fiber.Ctx) error {
	completions, err := handler.commitments.Completions(c.Params("id"), strings.TrimSpace(c.Query("userId")))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(completions)
}
