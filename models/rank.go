package models

import (
	"time"
)

// RankDefinition is a named rank inside a domain (e.g. "Iron", "Vanguard"),
// gated by a set of challenge/tier requirements.
type RankDefinition struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	DomainID  string `json:"domain_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Slug      string `json:"slug" gorm:"uniqueIndex;not null"`
	IconURL   string `json:"icon_url"`
	SortOrder int    `json:"sort_order" gorm:"column:sort_order;default:0"`

	Requirements []RankRequirement `json:"requirements,omitempty" gorm:"foreignKey:RankID"`

	Timestamps
}

// RankRequirement says: the athlete's approved submission on ChallengeID must
// have claimed at least MinGradeRank. All requirements of a rank must hold for
// the rank to unlock.
type RankRequirement struct {
	ID           string `json:"id" gorm:"primaryKey;type:uuid"`
	RankID       string `json:"rank_id" gorm:"not null;index"`
	ChallengeID  string `json:"challenge_id" gorm:"not null;index"`
	MinGradeRank int    `json:"min_grade_rank" gorm:"not null"`

	Timestamps
}

// AthleteRank is an awarded rank instance. Revoked only through the explicit
// reversal path (submission deletion / rejection after approval).
type AthleteRank struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	AthleteID  string    `json:"athlete_id" gorm:"not null;uniqueIndex:idx_athlete_ranks_athlete_rank"`
	RankID     string    `json:"rank_id" gorm:"not null;uniqueIndex:idx_athlete_ranks_athlete_rank"`
	UnlockedAt time.Time `json:"unlocked_at" gorm:"autoCreateTime"`
}
