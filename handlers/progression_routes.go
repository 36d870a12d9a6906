// handlers/progression_routes.go
package handlers

import (
	"athlete-progression-system/middleware"
	"athlete-progression-system/models"
	"athlete-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progression *services.ProgressionService, divisions *services.DivisionService, catalog *services.CatalogService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Current XP/level per domain plus unlocked ranks.
	secured.Get("/user/progress", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		athlete, err := catalog.AthleteByExternalID(ctx.ActorID)
		if err != nil {
			return engineError(c, err)
		}

		records, athleteRanks, err := progression.GetProgress(athlete.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress", "cause": err.Error(),
			})
		}

		// Resolve rank names for display.
		rankIDs := make([]string, len(athleteRanks))
		for i, r := range athleteRanks {
			rankIDs[i] = r.RankID
		}
		var rankDefs []models.RankDefinition
		if len(rankIDs) > 0 {
			if err := progression.DB.Where("id IN ?", rankIDs).Find(&rankDefs).Error; err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to load ranks", "cause": err.Error(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"athlete_id": athlete.ID,
			"domains":    records,
			"ranks":      rankDefs,
		})
	})

	// Which division the athlete currently lands in. An empty result means
	// ungraded, not an error.
	secured.Get("/user/division", func(c *fiber.Ctx) error {
		ctx := services.EngineContextFromFiber(c)

		athlete, err := catalog.AthleteByExternalID(ctx.ActorID)
		if err != nil {
			return engineError(c, err)
		}

		division, err := divisions.MatchForAthlete(athlete, ctx.Now)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to match division", "cause": err.Error(),
			})
		}
		if division == nil {
			return c.JSON(fiber.Map{"division": nil, "graded": false})
		}
		return c.JSON(fiber.Map{"division": division, "graded": true})
	})

	secured.Get("/athletes/search", catalog.SearchAthletes)
}
