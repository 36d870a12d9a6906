package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"athlete-progression-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

type CreateChallengeRequest struct {
	CategoryID      string             `json:"category_id"`
	PrimaryDomainID string             `json:"primary_domain_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	GradingType     models.GradingType `json:"grading_type"`
	GradingUnit     string             `json:"grading_unit"`
	EquipmentIDs    []string           `json:"equipment_ids,omitempty"`
	PublishSchedule *time.Time         `json:"publish_schedule,omitempty"`
}

// GradeInput is one rung when (re)authoring a division's ladder.
type GradeInput struct {
	Rank        int     `json:"rank"`
	Label       string  `json:"label"`
	TargetValue float64 `json:"target_value"`
	XPValue     int64   `json:"xp_value"`
}

func (s *ChallengeService) Create(req *CreateChallengeRequest) (*models.Challenge, error) {
	if req.Name == "" {
		return nil, invalidField("name", "name is required")
	}
	if !req.GradingType.Valid() {
		return nil, invalidField("grading_type", fmt.Sprintf("unknown grading type %q", req.GradingType))
	}
	if req.CategoryID == "" || req.PrimaryDomainID == "" {
		return nil, invalidField("category_id", "category_id and primary_domain_id are required")
	}

	challenge := models.Challenge{
		CategoryID:      req.CategoryID,
		PrimaryDomainID: req.PrimaryDomainID,
		Name:            req.Name,
		Slug:            slug.Make(req.Name),
		Description:     req.Description,
		GradingType:     req.GradingType,
		GradingUnit:     req.GradingUnit,
		Status:          models.ChallengeDraft,
		PublishSchedule: req.PublishSchedule,
	}
	if req.PublishSchedule != nil {
		challenge.Status = models.ChallengeScheduled
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&challenge).Error; err != nil {
			return err
		}
		for _, eqID := range req.EquipmentIDs {
			link := models.ChallengeEquipment{ChallengeID: challenge.ID, EquipmentID: eqID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// SetLadder replaces the grade ladder of one (challenge, division) pair.
// Ranks must be unique; target values should be strictly ordered but a tie is
// tolerated (the resolver breaks it by rank).
func (s *ChallengeService) SetLadder(challengeID, divisionID string, rungs []GradeInput) ([]models.Grade, error) {
	if len(rungs) == 0 {
		return nil, invalidField("grades", "ladder needs at least one rung")
	}
	seen := make(map[int]bool, len(rungs))
	for _, r := range rungs {
		if r.Rank < 1 {
			return nil, invalidField("rank", "rank must be >= 1")
		}
		if seen[r.Rank] {
			return nil, invalidField("rank", fmt.Sprintf("duplicate rank %d in ladder", r.Rank))
		}
		seen[r.Rank] = true
	}

	var grades []models.Grade
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
			}
			return err
		}

		if err := tx.Unscoped().
			Where("challenge_id = ? AND division_id = ?", challengeID, divisionID).
			Delete(&models.Grade{}).Error; err != nil {
			return err
		}

		for _, r := range rungs {
			g := models.Grade{
				ChallengeID: challengeID,
				DivisionID:  divisionID,
				Rank:        r.Rank,
				Label:       r.Label,
				TargetValue: r.TargetValue,
				XPValue:     r.XPValue,
			}
			if err := tx.Create(&g).Error; err != nil {
				return err
			}
			grades = append(grades, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grades, nil
}

// GetBySlug loads a challenge with its ladder for one division.
func (s *ChallengeService) GetBySlug(challengeSlug, divisionID string) (*models.Challenge, []models.Grade, error) {
	var challenge models.Challenge
	if err := s.DB.Preload("Category").Preload("Equipment").
		First(&challenge, "slug = ?", challengeSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("challenge %s: %w", challengeSlug, ErrNotFound)
		}
		return nil, nil, err
	}

	var grades []models.Grade
	if divisionID != "" {
		if err := s.DB.Where("challenge_id = ? AND division_id = ?", challenge.ID, divisionID).
			Order("rank ASC").Find(&grades).Error; err != nil {
			return nil, nil, err
		}
	}
	return &challenge, grades, nil
}

// ListPublished returns published challenges, optionally filtered by category.
func (s *ChallengeService) ListPublished(categorySlug string) ([]models.Challenge, error) {
	q := s.DB.Where("status = ?", models.ChallengePublished)
	if categorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = challenges.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	var challenges []models.Challenge
	err := q.Order("published_at DESC").Find(&challenges).Error
	return challenges, err
}

// StartPublishScheduler flips scheduled challenges to published once their
// publish time passes.
func (s *ChallengeService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var challenges []models.Challenge
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_schedule <= ?", models.ChallengeScheduled, now).
				Find(&challenges).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, ch := range challenges {
				ch.Status = models.ChallengePublished
				ch.PublishedAt = &now
				ch.PublishSchedule = nil
				if err := s.DB.Save(&ch).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish challenge %s: %v", ch.ID, err)
				} else {
					log.Printf("✅ Auto-published challenge: %s", ch.Name)
				}
			}
		}),
	)
}
