package services

import (
	"errors"
	"strings"

	"athlete-progression-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CatalogService is the admin surface for the rarely-mutated, read-heavy
// records: domains, categories, divisions, equipment, rank definitions and
// the XP threshold table. Plain persistence plumbing — the engine only reads
// these.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// --- Domains ---

type CreateDomainRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	SortOrder   int    `json:"sort_order"`
}

func (s *CatalogService) CreateDomain(c *fiber.Ctx) error {
	var req CreateDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	domain := models.Domain{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		IconURL:     req.IconURL,
		SortOrder:   req.SortOrder,
	}
	if err := s.DB.Create(&domain).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create domain", "details": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(domain)
}

func (s *CatalogService) ListDomains(c *fiber.Ctx) error {
	var domains []models.Domain
	if err := s.DB.Order("sort_order ASC, name ASC").Find(&domains).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list domains", "details": err.Error()})
	}
	return c.JSON(domains)
}

// --- Categories ---

type CreateCategoryRequest struct {
	DomainID string `json:"domain_id"`
	Name     string `json:"name"`
}

func (s *CatalogService) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.DomainID == "" || strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "domain_id and name are required"})
	}
	var domain models.Domain
	if err := s.DB.First(&domain, "id = ?", req.DomainID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "domain not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error checking domain", "details": err.Error()})
	}

	category := models.Category{
		DomainID: req.DomainID,
		Name:     req.Name,
		Slug:     slug.Make(domain.Name + "-" + req.Name),
	}
	if err := s.DB.Create(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create category", "details": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// --- Divisions ---

type CreateDivisionRequest struct {
	Name      string  `json:"name"`
	AgeMin    *int    `json:"age_min,omitempty"`
	AgeMax    *int    `json:"age_max,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	SortOrder int     `json:"sort_order"`
}

func (s *CatalogService) CreateDivision(c *fiber.Ctx) error {
	var req CreateDivisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.AgeMin != nil && req.AgeMax != nil && *req.AgeMin > *req.AgeMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "age_min cannot exceed age_max"})
	}

	division := models.Division{
		Name:      req.Name,
		AgeMin:    req.AgeMin,
		AgeMax:    req.AgeMax,
		Gender:    req.Gender,
		SortOrder: req.SortOrder,
	}
	if err := s.DB.Create(&division).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create division", "details": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(division)
}

func (s *CatalogService) ListDivisions(c *fiber.Ctx) error {
	var divisions []models.Division
	if err := s.DB.Order("sort_order ASC, created_at ASC, id ASC").Find(&divisions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list divisions", "details": err.Error()})
	}
	return c.JSON(divisions)
}

// --- Equipment ---

func (s *CatalogService) CreateEquipment(c *fiber.Ctx) error {
	var item models.EquipmentItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if strings.TrimSpace(item.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	item.ID = ""
	if err := s.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create equipment", "details": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// --- Rank definitions ---

type CreateRankRequest struct {
	DomainID     string `json:"domain_id"`
	Name         string `json:"name"`
	IconURL      string `json:"icon_url"`
	SortOrder    int    `json:"sort_order"`
	Requirements []struct {
		ChallengeID  string `json:"challenge_id"`
		MinGradeRank int    `json:"min_grade_rank"`
	} `json:"requirements"`
}

func (s *CatalogService) CreateRank(c *fiber.Ctx) error {
	var req CreateRankRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.DomainID == "" || strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "domain_id and name are required"})
	}
	if len(req.Requirements) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a rank needs at least one requirement"})
	}
	for _, r := range req.Requirements {
		// min_grade_rank 0 would be satisfied by athletes with no approved
		// submission at all; ladder ranks start at 1.
		if r.ChallengeID == "" || r.MinGradeRank < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "each requirement needs a challenge_id and a min_grade_rank of at least 1",
			})
		}
	}

	rank := models.RankDefinition{
		DomainID:  req.DomainID,
		Name:      req.Name,
		Slug:      slug.Make(req.Name),
		IconURL:   req.IconURL,
		SortOrder: req.SortOrder,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rank).Error; err != nil {
			return err
		}
		for _, r := range req.Requirements {
			requirement := models.RankRequirement{
				RankID:       rank.ID,
				ChallengeID:  r.ChallengeID,
				MinGradeRank: r.MinGradeRank,
			}
			if err := tx.Create(&requirement).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create rank", "details": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(rank)
}

// --- Level thresholds ---

// ReplaceLevelThresholds swaps the XP threshold table wholesale. Cutoffs must
// be strictly increasing with level.
func (s *CatalogService) ReplaceLevelThresholds(c *fiber.Ctx) error {
	var req struct {
		Thresholds []models.LevelThreshold `json:"thresholds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if len(req.Thresholds) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "thresholds cannot be empty"})
	}
	for i := 1; i < len(req.Thresholds); i++ {
		prev, cur := req.Thresholds[i-1], req.Thresholds[i]
		if cur.Level <= prev.Level || cur.MinXP <= prev.MinXP {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "thresholds must be strictly increasing in both level and min_xp",
			})
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.LevelThreshold{}).Error; err != nil {
			return err
		}
		for i := range req.Thresholds {
			t := models.LevelThreshold{Level: req.Thresholds[i].Level, MinXP: req.Thresholds[i].MinXP}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to replace thresholds", "details": err.Error()})
	}
	return c.JSON(fiber.Map{"replaced": len(req.Thresholds)})
}

// SeedLevelThresholds inserts the default table if none exists yet.
func (s *CatalogService) SeedLevelThresholds() error {
	var count int64
	if err := s.DB.Model(&models.LevelThreshold{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, t := range models.DefaultLevelThresholds {
		row := t
		if err := s.DB.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
