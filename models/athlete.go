package models

import (
	"time"

	"gorm.io/gorm"
)

// Athlete mirrors the profile-service record (denormalized for local joins).
// The identity fields never change here; profile fields are overwritten by the
// athlete sync worker.
type Athlete struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalUserID string  `json:"external_user_id" gorm:"uniqueIndex;not null"` // links to identity service
	Username       string  `json:"username"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`

	// Division matching inputs. Gender is optional and self-described.
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`

	// Comma-joined discipline slugs, denormalized from the profile service.
	Disciplines string `json:"disciplines"`

	Timestamps
}

// AgeAt returns whole years elapsed since DateOfBirth as of now.
// An athlete whose birthday has not yet come around this year still counts
// the previous age.
func (a *Athlete) AgeAt(now time.Time) (int, bool) {
	if a.DateOfBirth == nil {
		return 0, false
	}
	dob := *a.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, true
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
