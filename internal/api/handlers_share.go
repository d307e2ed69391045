package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) RotateShareCode(c *fiber.Ctx) error {
	code, err := handler.commitments.RotateShareCode(c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"shareCode": code})
}

func (handler *Handler) JoinCommitment(c *fiber.Ctx) error {
	input := joinCommitmentInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return apiError(c, fiber.StatusBadRequest, "userId is required")
	}

	commitment, err := handler.commitments.Join(c.Params("code"), input.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(commitment)
}

func (handler *Handler) ViewCommitment(c *fiber.Ctx) error {
	commitment, err := handler.commitments.ViewShared(c.Params("code"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(commitment)
}
