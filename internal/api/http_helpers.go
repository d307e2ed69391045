package api

import (
	"errors"

	"github.com/commitzapp/commitz/internal/services"
	"github.com/gofiber/fiber/v2"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps the domain error taxonomy onto HTTP statuses; the
// client reverses the mapping on its side.
func serviceError(c *fiber.Ctx, err error) error {
	return apiError(c, statusForError(err), services.ErrorMessage(err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrCommitmentNotFound),
		errors.Is(err, services.ErrInvalidShareCode),
		errors.Is(err, services.ErrNotCollaborative):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrChallengeFull),
		errors.Is(err, services.ErrShareCodeExhausted):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidTitle),
		errors.Is(err, services.ErrInvalidCommitmentType),
		errors.Is(err, services.ErrInvalidDate):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
