package models

import (
	"time"
)

// Challenge is a gradable activity owning a per-division grade ladder.
type Challenge struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid"`
	CategoryID      string          `json:"category_id" gorm:"not null;index"`
	PrimaryDomainID string          `json:"primary_domain_id" gorm:"not null;index"` // XP lands here
	Name            string          `json:"name" gorm:"not null"`
	Slug            string          `json:"slug" gorm:"uniqueIndex;not null"`
	Description     string          `json:"description" gorm:"type:text"`
	GradingType     GradingType     `json:"grading_type" gorm:"type:varchar(16);not null"`
	GradingUnit     string          `json:"grading_unit"` // "seconds", "reps", "meters", ...
	Status          ChallengeStatus `json:"status" gorm:"type:varchar(16);default:'draft'"`
	CoverImageURL   string          `json:"cover_image_url"`
	PublishSchedule *time.Time      `json:"publish_schedule,omitempty"`
	PublishedAt     *time.Time      `json:"published_at,omitempty" gorm:"index"`

	// Relationships
	Category  *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Grades    []Grade         `json:"grades,omitempty" gorm:"foreignKey:ChallengeID"`
	Equipment []EquipmentItem `json:"equipment,omitempty" gorm:"many2many:challenge_equipments;"`

	Timestamps
}

// Grade is one rung of a challenge's tier ladder for one division.
// Rank is unique per (challenge, division) and orders rungs by difficulty:
// higher Rank = harder, regardless of which numeric direction is better.
type Grade struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	ChallengeID string `json:"challenge_id" gorm:"not null;index:idx_grades_challenge_division"`
	DivisionID  string `json:"division_id" gorm:"not null;index:idx_grades_challenge_division"`
	Rank        int    `json:"rank" gorm:"not null"`
	Label       string `json:"label"` // display letter, e.g. "D", "C", "B"

	TargetValue float64 `json:"target_value" gorm:"not null"`
	XPValue     int64   `json:"xp_value" gorm:"default:0"` // XP credited when this is the highest tier

	Timestamps
}
