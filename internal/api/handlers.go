package api

import (
	"github.com/commitzapp/commitz/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	commitments *services.CommitmentService
}

type createCommitmentInput struct {
	Title  string `json:"title" form:"title"`
	Type   string `json:"type" form:"type"`
	UserID string `json:"userId" form:"userId"`
}

type updateCommitmentInput struct {
	Title string `json:"title" form:"title"`
}

type deleteCommitmentInput struct {
	UserID string `json:"userId" form:"userId"`
}

type toggleCompletionInput struct {
	Date   string `json:"date" form:"date"`
	UserID string `json:"userId" form:"userId"`
}

type joinCommitmentInput struct {
	UserID string `json:"userId" form:"userId"`
}

func NewHandler(commitments *services.CommitmentService) *Handler {
	return &Handler{commitments: commitments}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
