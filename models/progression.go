package models

import (
	"time"
)

// ProgressionRecord tracks cumulative XP per athlete per domain.
// Engine-mutated only: athletes never write these rows, and Level is always
// recomputed from TotalXP against the threshold table.
type ProgressionRecord struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	AthleteID string `json:"athlete_id" gorm:"not null;uniqueIndex:idx_progression_athlete_domain"`
	DomainID  string `json:"domain_id" gorm:"not null;uniqueIndex:idx_progression_athlete_domain"`

	TotalXP int64 `json:"total_xp" gorm:"default:0"`
	Level   int   `json:"level" gorm:"default:1"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// LevelThreshold maps a cumulative-XP cutoff to a level. Rows form a strictly
// increasing sequence; the level for a given XP is the greatest threshold not
// exceeding it.
type LevelThreshold struct {
	ID    string `json:"id" gorm:"primaryKey;type:uuid"`
	Level int    `json:"level" gorm:"uniqueIndex;not null"`
	MinXP int64  `json:"min_xp" gorm:"not null"`

	Timestamps
}

// DefaultLevelThresholds seed the table on first boot. Admin can retune later.
var DefaultLevelThresholds = []LevelThreshold{
	{Level: 1, MinXP: 0},
	{Level: 2, MinXP: 100},
	{Level: 3, MinXP: 250},
	{Level: 4, MinXP: 500},
	{Level: 5, MinXP: 900},
	{Level: 6, MinXP: 1500},
	{Level: 7, MinXP: 2400},
	{Level: 8, MinXP: 3600},
	{Level: 9, MinXP: 5200},
	{Level: 10, MinXP: 7500},
}
