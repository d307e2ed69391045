package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) CreateCommitment(c *fiber.Ctx) error {
	input := createCommitmentInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return apiError(c, fiber.StatusBadRequest, "userId is required")
	}

	commitment, err := handler.commitments.Create(input.Title, input.Type, input.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(commitment)
}

func (handler *Handler) ListCommitments(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		return apiError(c, fiber.StatusBadRequest, "userId is required")
	}

	commitments, err := handler.commitments.ListForOwner(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(commitments)
}

func (handler *Handler) ListCollaborativeCommitments(c *fiber.Ctx) error {
	commitments, err := handler.commitments.ListCollaborativeForUser(c.Params("userId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(commitments)
}

func (handler *Handler) GetCommitment(c *fiber.Ctx) error {
	commitment, err := handler.commitments.Get(c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(commitment)
}

func (handler *Handler) UpdateCommitment(c *fiber.Ctx) error {
	input := updateCommitmentInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	commitment, err := handler.commitments.UpdateTitle(c.Params("id"), input.Title)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(commitment)
}

// DeleteCommitment deletes as owner or leaves as participant; the
// service decides which from the caller's identity.
func (handler *Handler) DeleteCommitment(c *fiber.Ctx) error {
	input := deleteCommitmentInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return apiError(c, fiber.StatusBadRequest, "userId is required")
	}

	if err := handler.commitments.RemoveOrLeave(c.Params("id"), input.UserID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ListParticipants(c *fiber.Ctx) error {
	userIDs, err := handler.commitments.Participants(c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"userIds": userIDs})
}
