// handlers/catalog_routes.go
package handlers

import (
	"athlete-progression-system/middleware"
	"athlete-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app *fiber.App, catalog *services.CatalogService, challenges *services.ChallengeService) {
	// Public reads (still behind the gateway token, no user context needed).
	app.Get("/challenges", func(c *fiber.Ctx) error {
		list, err := challenges.ListPublished(c.Query("category", ""))
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/challenges/:slug", func(c *fiber.Ctx) error {
		challenge, grades, err := challenges.GetBySlug(c.Params("slug"), c.Query("division_id", ""))
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(fiber.Map{"challenge": challenge, "grades": grades})
	})

	app.Get("/divisions", catalog.ListDivisions)
	app.Get("/domains", catalog.ListDomains)

	// Admin record CRUD
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	admin.Post("/domains", catalog.CreateDomain)
	admin.Post("/categories", catalog.CreateCategory)
	admin.Post("/divisions", catalog.CreateDivision)
	admin.Post("/equipment", catalog.CreateEquipment)
	admin.Post("/ranks", catalog.CreateRank)
	admin.Put("/level-thresholds", catalog.ReplaceLevelThresholds)

	admin.Post("/challenges", func(c *fiber.Ctx) error {
		var req services.CreateChallengeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		challenge, err := challenges.Create(&req)
		if err != nil {
			return engineError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(challenge)
	})

	admin.Put("/challenges/:id/ladder/:divisionId", func(c *fiber.Ctx) error {
		var body struct {
			Grades []services.GradeInput `json:"grades"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		grades, err := challenges.SetLadder(c.Params("id"), c.Params("divisionId"), body.Grades)
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(grades)
	})
}
