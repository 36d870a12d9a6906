// handlers/submission_routes.go
package handlers

import (
	"athlete-progression-system/middleware"
	"athlete-progression-system/services"
	"athlete-progression-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupSubmissionRoutes(app *fiber.App, submissions *services.SubmissionService, catalog *services.CatalogService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Athlete: create or resubmit an attempt. The gateway user id is the
	// external id — resolve the local athlete mirror first.
	secured.Post("/submissions", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		athlete, err := catalog.AthleteByExternalID(ctx.ActorID)
		if err != nil {
			return engineError(c, err)
		}

		var req services.CreateSubmissionRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		sub, err := submissions.CreateOrResubmit(ctx, athlete.ID, &req)
		if err != nil {
			return engineError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	// Athlete: upload proof media, returns the CDN URL to put on the
	// submission payload.
	secured.Post("/submissions/proof", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing proof file", "details": err.Error()})
		}

		athlete, err := catalog.AthleteByExternalID(ctx.ActorID)
		if err != nil {
			return engineError(c, err)
		}

		url, err := utils.UploadProofMedia(fileHeader, athlete.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed", "details": err.Error()})
		}
		return c.JSON(fiber.Map{"proof_url": url})
	})

	secured.Get("/submissions", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		athlete, err := catalog.AthleteByExternalID(ctx.ActorID)
		if err != nil {
			return engineError(c, err)
		}

		subs, err := submissions.ListForAthlete(athlete.ID)
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(subs)
	})

	secured.Delete("/submissions/:id", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		sub, err := submissions.Get(c.Params("id"))
		if err != nil {
			return engineError(c, err)
		}
		athlete, err := catalog.AthleteByExternalID(ctx.ActorID)
		if err != nil {
			return engineError(c, err)
		}
		if sub.AthleteID != athlete.ID && !ctx.HasRole("admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your submission"})
		}

		if err := submissions.Delete(ctx, sub.ID); err != nil {
			return engineError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": sub.ID})
	})

	// Reviewer surface
	review := secured.Group("/review", middleware.RequireRole("reviewer"))

	review.Get("/queue", func(c *fiber.Ctx) error {
		subs, err := submissions.ListPending(c.QueryInt("limit", 50))
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(subs)
	})

	review.Post("/:id/approve", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		var body struct {
			AchievedValue *float64 `json:"achieved_value,omitempty"`
			Notes         string   `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		result, err := submissions.Approve(ctx, c.Params("id"), body.AchievedValue, body.Notes)
		if err != nil {
			return engineError(c, err)
		}
		middleware.CountReviewDecision("approve")
		return c.JSON(result)
	})

	review.Post("/:id/reject", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		var body struct {
			Notes string `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		sub, err := submissions.Reject(ctx, c.Params("id"), body.Notes)
		if err != nil {
			return engineError(c, err)
		}
		middleware.CountReviewDecision("reject")
		return c.JSON(sub)
	})

	review.Post("/:id/revision", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		var body struct {
			Notes string `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		sub, err := submissions.RequestRevision(ctx, c.Params("id"), body.Notes)
		if err != nil {
			return engineError(c, err)
		}
		middleware.CountReviewDecision("revision")
		return c.JSON(sub)
	})
}
