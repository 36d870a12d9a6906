package services

import (
	"errors"
	"log"
	"sort"
	"time"

	"athlete-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressionService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewProgressionService(db *gorm.DB, notifier Notifier) *ProgressionService {
	return &ProgressionService{DB: db, Notifier: notifier}
}

// ProgressionResult reports the ledger state after a delta was applied.
type ProgressionResult struct {
	AthleteID     string                  `json:"athlete_id"`
	DomainID      string                  `json:"domain_id"`
	NewXP         int64                   `json:"new_xp"`
	NewLevel      int                     `json:"new_level"`
	LevelChanged  bool                    `json:"level_changed"`
	RanksUnlocked []models.RankDefinition `json:"ranks_unlocked,omitempty"`
	RanksRevoked  []models.RankDefinition `json:"ranks_revoked,omitempty"`
}

// LevelForXP derives a level from cumulative XP: the greatest threshold whose
// cutoff does not exceed xp. Thresholds need not arrive sorted. An empty
// table maps everything to level 1.
func LevelForXP(thresholds []models.LevelThreshold, xp int64) int {
	level := 1
	sorted := make([]models.LevelThreshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinXP < sorted[j].MinXP })
	for _, t := range sorted {
		if xp >= t.MinXP {
			level = t.Level
		} else {
			break
		}
	}
	return level
}

// Apply credits xpDelta to the athlete's domain ledger in its own
// transaction, then re-evaluates rank unlocks. Standalone entry point — the
// submission state machine uses applyDelta inside its own transaction instead.
func (s *ProgressionService) Apply(ctx EngineContext, athleteID, domainID string, xpDelta int64) (*ProgressionResult, error) {
	var result *ProgressionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.applyDelta(tx, athleteID, domainID, xpDelta, ctx.Now, false)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.announceRankChanges(athleteID, result)
	return result, nil
}

// Reverse is the exact inverse of Apply: it debits the same delta and allows
// rank revocation, since the supporting submission is going away.
func (s *ProgressionService) Reverse(ctx EngineContext, athleteID, domainID string, xpDelta int64) (*ProgressionResult, error) {
	var result *ProgressionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.applyDelta(tx, athleteID, domainID, -xpDelta, ctx.Now, true)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.announceRankChanges(athleteID, result)
	return result, nil
}

// applyDelta is the read-modify-write core, always run under a row lock so
// concurrent updates to the same (athlete, domain) ledger serialize.
// allowRevoke is set only on reversal paths — the normal approve path can
// never silently take a rank away.
func (s *ProgressionService) applyDelta(tx *gorm.DB, athleteID, domainID string, delta int64, now time.Time, allowRevoke bool) (*ProgressionResult, error) {
	var rec models.ProgressionRecord
	err := forUpdate(tx).
		Where("athlete_id = ? AND domain_id = ?", athleteID, domainID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = models.ProgressionRecord{AthleteID: athleteID, DomainID: domainID, TotalXP: 0, Level: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "athlete_id"}, {Name: "domain_id"}},
			DoNothing: true,
		}).Create(&rec).Error; err != nil {
			return nil, err
		}
		// Re-read under lock in case a concurrent writer won the insert race.
		if err := forUpdate(tx).
			Where("athlete_id = ? AND domain_id = ?", athleteID, domainID).
			First(&rec).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	thresholds, err := s.loadThresholds(tx)
	if err != nil {
		return nil, err
	}

	oldLevel := rec.Level
	rec.TotalXP += delta
	if rec.TotalXP < 0 {
		rec.TotalXP = 0
	}
	rec.Level = LevelForXP(thresholds, rec.TotalXP)
	if rec.Level > oldLevel {
		rec.LastLevelUpAt = &now
	}

	if err := tx.Save(&rec).Error; err != nil {
		return nil, err
	}

	unlocked, revoked, err := s.evaluateRanks(tx, athleteID, domainID, allowRevoke)
	if err != nil {
		return nil, err
	}

	log.Printf("🏅 [LEDGER] athlete=%s domain=%s Δ=%+d → xp=%d lvl=%d (unlocked=%d revoked=%d)",
		athleteID, domainID, delta, rec.TotalXP, rec.Level, len(unlocked), len(revoked))

	return &ProgressionResult{
		AthleteID:     athleteID,
		DomainID:      domainID,
		NewXP:         rec.TotalXP,
		NewLevel:      rec.Level,
		LevelChanged:  rec.Level != oldLevel,
		RanksUnlocked: unlocked,
		RanksRevoked:  revoked,
	}, nil
}

func (s *ProgressionService) loadThresholds(tx *gorm.DB) ([]models.LevelThreshold, error) {
	var thresholds []models.LevelThreshold
	if err := tx.Order("min_xp ASC").Find(&thresholds).Error; err != nil {
		return nil, err
	}
	return thresholds, nil
}

// announceRankChanges fires notifications after the transaction committed.
// Notify failures never roll anything back.
func (s *ProgressionService) announceRankChanges(athleteID string, result *ProgressionResult) {
	if s.Notifier == nil || result == nil {
		return
	}
	for _, rank := range result.RanksUnlocked {
		s.Notifier.RankUnlocked(athleteID, rank)
	}
}

// GetProgress returns the athlete's ledger rows across all domains, plus
// unlocked ranks.
func (s *ProgressionService) GetProgress(athleteID string) ([]models.ProgressionRecord, []models.AthleteRank, error) {
	var records []models.ProgressionRecord
	if err := s.DB.Where("athlete_id = ?", athleteID).Order("domain_id ASC").Find(&records).Error; err != nil {
		return nil, nil, err
	}
	var ranks []models.AthleteRank
	if err := s.DB.Where("athlete_id = ?", athleteID).Order("unlocked_at ASC").Find(&ranks).Error; err != nil {
		return nil, nil, err
	}
	return records, ranks, nil
}
