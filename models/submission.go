package models

import (
	"strconv"
	"strings"
	"time"
)

// Submission is one athlete's attempt at one challenge. At most one row per
// (athlete, challenge) — resubmission overwrites it.
type Submission struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	AthleteID   string `json:"athlete_id" gorm:"not null;uniqueIndex:idx_submissions_athlete_challenge"`
	ChallengeID string `json:"challenge_id" gorm:"not null;uniqueIndex:idx_submissions_athlete_challenge"`

	ProofType ProofType `json:"proof_type" gorm:"type:varchar(16);not null"`
	ProofURL  string    `json:"proof_url"` // video/image/race-result media

	// strava/garmin imports
	ExternalActivityID *string `json:"external_activity_id,omitempty" gorm:"index"`

	// manual proof
	SupervisorName *string `json:"supervisor_name,omitempty"`

	AchievedValue *float64         `json:"achieved_value,omitempty"`
	Status        SubmissionStatus `json:"status" gorm:"type:varchar(16);default:'pending';index"`

	// Review outcome. ClaimedRanks is the comma-joined satisfied prefix,
	// easiest first (e.g. "1,2,3").
	HighestGradeID *string `json:"highest_grade_id,omitempty"`
	ClaimedRanks   string  `json:"claimed_ranks"`
	DivisionID     *string `json:"division_id,omitempty"` // division the result was graded under

	ReviewerID  *string    `json:"reviewer_id,omitempty"`
	ReviewNotes string     `json:"review_notes"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`

	IsPublic       bool `json:"is_public" gorm:"default:true"`
	HideExactValue bool `json:"hide_exact_value" gorm:"default:false"`

	Timestamps
}

// ClaimedRankList decodes ClaimedRanks into ints, easiest first.
func (s *Submission) ClaimedRankList() []int {
	if s.ClaimedRanks == "" {
		return nil
	}
	parts := strings.Split(s.ClaimedRanks, ",")
	ranks := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		ranks = append(ranks, n)
	}
	return ranks
}

// SetClaimedRanks encodes the satisfied ranks for storage.
func (s *Submission) SetClaimedRanks(ranks []int) {
	if len(ranks) == 0 {
		s.ClaimedRanks = ""
		return
	}
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = strconv.Itoa(r)
	}
	s.ClaimedRanks = strings.Join(parts, ",")
}

// HighestClaimedRank returns the hardest claimed rank, or 0 when none.
func (s *Submission) HighestClaimedRank() int {
	ranks := s.ClaimedRankList()
	if len(ranks) == 0 {
		return 0
	}
	return ranks[len(ranks)-1]
}
