package services

import (
	"log"

	"athlete-progression-system/models"

	"gorm.io/gorm"
)

// evaluateRanks re-checks every rank definition in the domain against the
// athlete's currently approved submissions and reconciles the awarded set.
// A rank unlocks when every (challenge, minimum tier) requirement is covered.
// Revocation happens only when allowRevoke is set, i.e. on the explicit
// reversal path — otherwise unlocks are monotonic.
func (s *ProgressionService) evaluateRanks(tx *gorm.DB, athleteID, domainID string, allowRevoke bool) (unlocked, revoked []models.RankDefinition, err error) {
	var ranks []models.RankDefinition
	if err := tx.Preload("Requirements").
		Where("domain_id = ?", domainID).
		Order("sort_order ASC").
		Find(&ranks).Error; err != nil {
		return nil, nil, err
	}
	if len(ranks) == 0 {
		return nil, nil, nil
	}

	// Highest claimed rank per challenge across approved submissions.
	var approved []models.Submission
	if err := tx.Where("athlete_id = ? AND status = ?", athleteID, models.StatusApproved).
		Find(&approved).Error; err != nil {
		return nil, nil, err
	}
	bestByChallenge := make(map[string]int, len(approved))
	for i := range approved {
		if highest := approved[i].HighestClaimedRank(); highest > bestByChallenge[approved[i].ChallengeID] {
			bestByChallenge[approved[i].ChallengeID] = highest
		}
	}

	var held []models.AthleteRank
	if err := tx.Where("athlete_id = ?", athleteID).Find(&held).Error; err != nil {
		return nil, nil, err
	}
	heldSet := make(map[string]bool, len(held))
	for _, h := range held {
		heldSet[h.RankID] = true
	}

	for _, rank := range ranks {
		satisfied := rankSatisfied(rank, bestByChallenge)

		switch {
		case satisfied && !heldSet[rank.ID]:
			award := models.AthleteRank{AthleteID: athleteID, RankID: rank.ID}
			if err := tx.Create(&award).Error; err != nil {
				return nil, nil, err
			}
			unlocked = append(unlocked, rank)
			log.Printf("🎖️ [RANKS] unlocked %q for athlete %s", rank.Name, athleteID)

		case !satisfied && heldSet[rank.ID] && allowRevoke:
			if err := tx.Where("athlete_id = ? AND rank_id = ?", athleteID, rank.ID).
				Delete(&models.AthleteRank{}).Error; err != nil {
				return nil, nil, err
			}
			revoked = append(revoked, rank)
			log.Printf("⚠️ [RANKS] revoked %q from athlete %s (supporting submission removed)", rank.Name, athleteID)
		}
	}

	return unlocked, revoked, nil
}

// rankSatisfied checks all requirements. A rank with no authored requirements
// is never auto-awarded.
func rankSatisfied(rank models.RankDefinition, bestByChallenge map[string]int) bool {
	if len(rank.Requirements) == 0 {
		return false
	}
	for _, req := range rank.Requirements {
		if bestByChallenge[req.ChallengeID] < req.MinGradeRank {
			return false
		}
	}
	return true
}
