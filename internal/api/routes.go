package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	commitments := app.Group("/commitments")
	commitments.Post("", handler.CreateCommitment)
	commitments.Get("", handler.ListCommitments)

	// Code routes are registered before the :id routes so a code is
	// never captured as an id.
	commitments.Post("/join/:code", handler.JoinCommitment)
	commitments.Post("/view/:code", handler.ViewCommitment)
	commitments.Get("/collaborative/:userId", handler.ListCollaborativeCommitments)

	commitments.Get("/:id", handler.GetCommitment)
	commitments.Patch("/:id", handler.UpdateCommitment)
	commitments.Delete("/:id", handler.DeleteCommitment)
	commitments.Post("/:id/completions", handler.ToggleCompletion)
	commitments.Get("/:id/completions", handler.ListCompletions)
	commitments.Post("/:id/share", handler.RotateShareCode)
	commitments.Get("/:id/participants", handler.ListParticipants)
}
