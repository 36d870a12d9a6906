package services

import (
	"time"

	"athlete-progression-system/models"

	"gorm.io/gorm"
)

type DivisionService struct {
	DB *gorm.DB
}

func NewDivisionService(db *gorm.DB) *DivisionService {
	return &DivisionService{DB: db}
}

// MatchDivision picks the single division an athlete competes in, or nil when
// none fits. Candidates: gender unset or equal, and age inside the inclusive
// [AgeMin, AgeMax] bounds (nil = unbounded). Among candidates the lowest
// SortOrder wins; ties fall back to CreatedAt then ID so the result is stable
// across calls.
func MatchDivision(divisions []models.Division, dateOfBirth time.Time, gender *string, now time.Time) *models.Division {
	age := wholeYearsSince(dateOfBirth, now)

	var best *models.Division
	for i := range divisions {
		d := &divisions[i]
		if !divisionAccepts(d, age, gender) {
			continue
		}
		if best == nil || divisionWinsTieBreak(d, best) {
			best = d
		}
	}
	return best
}

func divisionAccepts(d *models.Division, age int, gender *string) bool {
	if d.Gender != nil {
		if gender == nil || *gender != *d.Gender {
			return false
		}
	}
	if d.AgeMin != nil && age < *d.AgeMin {
		return false
	}
	if d.AgeMax != nil && age > *d.AgeMax {
		return false
	}
	return true
}

func divisionWinsTieBreak(candidate, current *models.Division) bool {
	if candidate.SortOrder != current.SortOrder {
		return candidate.SortOrder < current.SortOrder
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.Before(current.CreatedAt)
	}
	return candidate.ID < current.ID
}

// wholeYearsSince computes integer age: a birthday not yet reached this year
// still counts the previous age.
func wholeYearsSince(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}

// MatchForAthlete loads all divisions and matches the athlete against them.
// A nil division is not an error — the athlete is simply ungraded.
func (s *DivisionService) MatchForAthlete(athlete *models.Athlete, now time.Time) (*models.Division, error) {
	if athlete.DateOfBirth == nil {
		return nil, nil
	}
	divisions, err := s.List()
	if err != nil {
		return nil, err
	}
	return MatchDivision(divisions, *athlete.DateOfBirth, athlete.Gender, now), nil
}

// List returns divisions in priority order.
func (s *DivisionService) List() ([]models.Division, error) {
	var divisions []models.Division
	err := s.DB.Order("sort_order ASC, created_at ASC, id ASC").Find(&divisions).Error
	return divisions, err
}
