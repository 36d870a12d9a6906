package services

import (
	"errors"
	"strconv"
	"strings"

	"athlete-progression-system/models"
	"athlete-progression-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SearchAthletes searches the locally mirrored athlete table.
func (s *CatalogService) SearchAthletes(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var athletes []models.Athlete
	db := s.DB.Model(&models.Athlete{}).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(username) LIKE ?", searchTerm)
	}
	if err := db.Find(&athletes).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	type AthleteSummary struct {
		ID             string  `json:"id"`
		ExternalUserID string  `json:"external_user_id"`
		Username       string  `json:"username"`
		DisplayName    string  `json:"display_name"`
		AvatarURL      *string `json:"avatar_url,omitempty"`
	}

	res := make([]AthleteSummary, len(athletes))
	for i, a := range athletes {
		display := a.Username
		if a.FirstName != nil {
			display = *a.FirstName
			if a.LastName != nil {
				display += " " + *a.LastName
			}
		}
		res[i] = AthleteSummary{
			ID:             a.ID,
			ExternalUserID: a.ExternalUserID,
			Username:       a.Username,
			DisplayName:    utils.TitleCase(display),
			AvatarURL:      a.AvatarURL,
		}
	}
	return c.JSON(res)
}

// AthleteByExternalID resolves the locally mirrored athlete row for a
// gateway-authenticated user id.
func (s *CatalogService) AthleteByExternalID(externalUserID string) (*models.Athlete, error) {
	var athlete models.Athlete
	if err := s.DB.First(&athlete, "external_user_id = ?", externalUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &athlete, nil
}
