package models

import (
	"time"
)

// ActivityMirror is a local copy of an imported Strava/Garmin activity,
// maintained by the activity sync worker. Submissions with strava/garmin
// proof resolve their achieved value from here — the engine never calls the
// provider APIs itself.
type ActivityMirror struct {
	ID                 string  `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalActivityID string  `json:"external_activity_id" gorm:"uniqueIndex;not null"`
	Provider           string  `json:"provider" gorm:"type:varchar(16);not null"` // "strava" | "garmin"
	AthleteExternalID  string  `json:"athlete_external_id" gorm:"index;not null"`
	ActivityType       string  `json:"activity_type"` // e.g. "Run", "Ride"
	MetricValue        float64 `json:"metric_value"`
	MetricUnit         string  `json:"metric_unit"`

	StartedAt    *time.Time `json:"started_at,omitempty"`
	LastSyncedAt time.Time  `json:"last_synced_at"`

	Timestamps
}
