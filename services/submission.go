package services

import (
	"errors"
	"fmt"
	"log"
	"math"

	"athlete-progression-system/models"

	"gorm.io/gorm"
)

type SubmissionService struct {
	DB          *gorm.DB
	Progression *ProgressionService
	Notifier    Notifier
}

func NewSubmissionService(db *gorm.DB, progression *ProgressionService, notifier Notifier) *SubmissionService {
	return &SubmissionService{DB: db, Progression: progression, Notifier: notifier}
}

// CreateSubmissionRequest is the proof payload for a new attempt or a
// resubmission.
type CreateSubmissionRequest struct {
	ChallengeID        string           `json:"challenge_id"`
	ProofType          models.ProofType `json:"proof_type"`
	ProofURL           string           `json:"proof_url,omitempty"`
	ExternalActivityID *string          `json:"external_activity_id,omitempty"`
	SupervisorName     *string          `json:"supervisor_name,omitempty"`
	AchievedValue      *float64         `json:"achieved_value,omitempty"`
	IsPublic           *bool            `json:"is_public,omitempty"`
	HideExactValue     *bool            `json:"hide_exact_value,omitempty"`
}

// ApprovalResult is what a review-approve hands back to the caller.
type ApprovalResult struct {
	Submission  *models.Submission `json:"submission"`
	Graded      bool               `json:"graded"`
	Progression *ProgressionResult `json:"progression,omitempty"`
	NoOp        bool               `json:"no_op"` // re-approval with unchanged value
}

// validateProof checks that the evidence matches the declared proof type.
// Rejected before any state mutation.
func validateProof(req *CreateSubmissionRequest) error {
	if !req.ProofType.Valid() {
		return invalidField("proof_type", fmt.Sprintf("unknown proof type %q", req.ProofType))
	}
	switch req.ProofType {
	case models.ProofVideo, models.ProofImage, models.ProofRaceResult:
		if req.ProofURL == "" {
			return invalidField("proof_url", "media proof requires an uploaded file URL")
		}
	case models.ProofStrava, models.ProofGarmin:
		if req.ExternalActivityID == nil || *req.ExternalActivityID == "" {
			return invalidField("external_activity_id", "imported proof requires the provider activity id")
		}
	case models.ProofManual:
		if req.SupervisorName == nil || *req.SupervisorName == "" {
			return invalidField("supervisor_name", "manual proof requires a supervisor reference")
		}
	}
	if req.AchievedValue != nil {
		v := *req.AchievedValue
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalidField("achieved_value", "achieved value must be a non-negative number")
		}
	}
	return nil
}

// CreateOrResubmit enters (or re-enters) the PENDING state. At most one
// submission exists per (athlete, challenge): a second attempt overwrites the
// proof fields of the existing row, clears prior claimed tiers and review
// notes, and resets status. An approved submission is terminal here and must
// be deleted (or admin-reopened) first.
func (s *SubmissionService) CreateOrResubmit(ctx EngineContext, athleteID string, req *CreateSubmissionRequest) (*models.Submission, error) {
	if req.ChallengeID == "" {
		return nil, invalidField("challenge_id", "challenge_id is required")
	}
	if err := validateProof(req); err != nil {
		return nil, err
	}

	var submission *models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.First(&challenge, "id = ?", req.ChallengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("challenge %s: %w", req.ChallengeID, ErrNotFound)
			}
			return err
		}

		var athlete models.Athlete
		if err := tx.First(&athlete, "id = ?", athleteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("athlete %s: %w", athleteID, ErrNotFound)
			}
			return err
		}

		achieved := req.AchievedValue
		if req.ProofType == models.ProofStrava || req.ProofType == models.ProofGarmin {
			// Imported proof takes its value from the activity mirror; the
			// engine never calls the provider API.
			var activity models.ActivityMirror
			if err := tx.First(&activity, "external_activity_id = ?", *req.ExternalActivityID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalidField("external_activity_id", "activity has not been imported yet")
				}
				return err
			}
			achieved = &activity.MetricValue
		}

		var existing models.Submission
		err := forUpdate(tx).
			Where("athlete_id = ? AND challenge_id = ?", athleteID, req.ChallengeID).
			First(&existing).Error

		switch {
		case err == nil:
			if existing.Status == models.StatusApproved {
				return fmt.Errorf("submission already approved: %w", ErrConflict)
			}
			applyProofFields(&existing, req, achieved)
			existing.Status = models.StatusPending
			existing.HighestGradeID = nil
			existing.SetClaimedRanks(nil)
			existing.DivisionID = nil
			existing.ReviewNotes = ""
			existing.ReviewerID = nil
			existing.ReviewedAt = nil
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			submission = &existing

		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh := models.Submission{
				AthleteID:   athleteID,
				ChallengeID: req.ChallengeID,
				Status:      models.StatusPending,
				IsPublic:    true,
			}
			applyProofFields(&fresh, req, achieved)
			if err := tx.Create(&fresh).Error; err != nil {
				// Unique index race: another request created the row first.
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("submission already exists: %w", ErrConflict)
				}
				return err
			}
			submission = &fresh

		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📬 [SUBMISSION] athlete=%s challenge=%s entered pending (proof=%s)",
		athleteID, req.ChallengeID, req.ProofType)
	return submission, nil
}

func applyProofFields(sub *models.Submission, req *CreateSubmissionRequest, achieved *float64) {
	sub.ProofType = req.ProofType
	sub.ProofURL = req.ProofURL
	sub.ExternalActivityID = req.ExternalActivityID
	sub.SupervisorName = req.SupervisorName
	sub.AchievedValue = achieved
	if req.IsPublic != nil {
		sub.IsPublic = *req.IsPublic
	}
	if req.HideExactValue != nil {
		sub.HideExactValue = *req.HideExactValue
	}
}

// Approve runs the full grading pipeline in one transaction: lock the row,
// match the athlete's division, resolve the ladder, commit tier + value, and
// credit the progression ledger. Re-approving with an unchanged value is a
// no-op; re-approving with a new value reverses the previous contribution
// before crediting the new one, so XP is never double-applied.
func (s *SubmissionService) Approve(ctx EngineContext, submissionID string, achievedValue *float64, notes string) (*ApprovalResult, error) {
	if achievedValue != nil {
		v := *achievedValue
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, invalidField("achieved_value", "achieved value must be a non-negative number")
		}
	}

	var result *ApprovalResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := lockSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		value := achievedValue
		if value == nil {
			value = sub.AchievedValue // previously cached (import or athlete-entered)
		}
		if value == nil {
			return invalidField("achieved_value", "no achieved value supplied or cached on the submission")
		}

		// Idempotency guard: the second of two racing approvals sees the
		// committed APPROVED row here and backs off.
		if sub.Status == models.StatusApproved && sub.AchievedValue != nil && *sub.AchievedValue == *value {
			result = &ApprovalResult{Submission: sub, Graded: sub.HighestGradeID != nil, NoOp: true}
			return nil
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, "id = ?", sub.ChallengeID).Error; err != nil {
			return err
		}

		// Re-grading an already approved result replaces its credit instead
		// of stacking: we net the old contribution against the new one below.
		wasApproved := sub.Status == models.StatusApproved
		oldXP, err := s.contributionXP(tx, sub)
		if err != nil {
			return err
		}
		if !wasApproved {
			oldXP = 0
		}

		var athlete models.Athlete
		if err := tx.First(&athlete, "id = ?", sub.AthleteID).Error; err != nil {
			return err
		}

		division, err := matchDivisionTx(tx, &athlete, ctx)
		if err != nil {
			return err
		}

		ladder := LadderResult{}
		if division != nil {
			var grades []models.Grade
			if err := tx.Where("challenge_id = ? AND division_id = ?", sub.ChallengeID, division.ID).
				Find(&grades).Error; err != nil {
				return err
			}
			ladder = ResolveLadder(*value, grades, challenge.GradingType)
		}

		sub.AchievedValue = value
		sub.Status = models.StatusApproved
		sub.ReviewerID = &ctx.ActorID
		sub.ReviewNotes = notes
		reviewedAt := ctx.Now
		sub.ReviewedAt = &reviewedAt
		if division != nil {
			sub.DivisionID = &division.ID
		} else {
			sub.DivisionID = nil
		}
		if ladder.Graded() {
			sub.HighestGradeID = &ladder.Highest.ID
			sub.SetClaimedRanks(ladder.ClaimedRanks())
		} else {
			// No division matched, or no tier satisfied: approved as a plain
			// completion, no tier and no XP.
			sub.HighestGradeID = nil
			sub.SetClaimedRanks(nil)
		}
		if err := tx.Save(sub).Error; err != nil {
			return err
		}

		var newXP int64
		if ladder.Graded() {
			newXP = ladder.Highest.XPValue
		}

		// Rank evaluation runs against the row state just committed. Gated on
		// the grading outcome, not the XP delta — a claimed tier can satisfy
		// a rank requirement even when it carries zero XP. The reversal flag
		// is only raised on the re-grade path, where the new result may
		// legitimately stop satisfying a requirement.
		var progResult *ProgressionResult
		if ladder.Graded() || wasApproved {
			progResult, err = s.Progression.applyDelta(tx, sub.AthleteID, challenge.PrimaryDomainID, newXP-oldXP, ctx.Now, wasApproved)
			if err != nil {
				return err
			}
		}

		result = &ApprovalResult{
			Submission:  sub,
			Graded:      ladder.Graded(),
			Progression: progResult,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.NoOp && s.Notifier != nil {
		s.Notifier.SubmissionApproved(result.Submission, result.Progression)
		if result.Progression != nil {
			s.Progression.announceRankChanges(result.Submission.AthleteID, result.Progression)
		}
	}
	return result, nil
}

// Reject closes the review with notes. Prior tier data stays on the row for
// audit. Rejecting an already approved submission is the explicit
// rejection-after-approval path and reverses its XP contribution.
func (s *SubmissionService) Reject(ctx EngineContext, submissionID, notes string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := lockSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if sub.Status == models.StatusRejected {
			return fmt.Errorf("submission already rejected: %w", ErrConflict)
		}

		if sub.Status == models.StatusApproved {
			if err := s.reverseContribution(tx, sub, ctx); err != nil {
				return err
			}
		}

		sub.Status = models.StatusRejected
		sub.ReviewerID = &ctx.ActorID
		sub.ReviewNotes = notes
		reviewedAt := ctx.Now
		sub.ReviewedAt = &reviewedAt
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		submission = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.SubmissionRejected(submission)
	}
	return submission, nil
}

// RequestRevision sends a pending submission back to the athlete with notes.
// The athlete's resubmission re-enters PENDING through CreateOrResubmit.
func (s *SubmissionService) RequestRevision(ctx EngineContext, submissionID, notes string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := lockSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if sub.Status != models.StatusPending {
			return fmt.Errorf("revision can only be requested while pending: %w", ErrConflict)
		}
		sub.Status = models.StatusNeedsRevision
		sub.ReviewerID = &ctx.ActorID
		sub.ReviewNotes = notes
		reviewedAt := ctx.Now
		sub.ReviewedAt = &reviewedAt
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		submission = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// Delete removes the submission. For an approved submission the XP
// contribution is reversed inside the same transaction; if the reversal
// fails, the delete fails with it — recorded XP must always trace back to a
// still-existing approved submission.
func (s *SubmissionService) Delete(ctx EngineContext, submissionID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := lockSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		if sub.Status == models.StatusApproved {
			if err := s.reverseContribution(tx, sub, ctx); err != nil {
				return fmt.Errorf("cannot delete: progression reversal failed: %w", err)
			}
		}

		if err := tx.Unscoped().Delete(&models.Submission{}, "id = ?", sub.ID).Error; err != nil {
			return err
		}
		log.Printf("🗑️ [SUBMISSION] deleted %s (athlete=%s challenge=%s)", sub.ID, sub.AthleteID, sub.ChallengeID)
		return nil
	})
}

// reverseContribution debits the XP an approved submission earned and
// re-evaluates ranks with revocation allowed. The submission row must be
// marked non-approved (or deleted) by the caller afterwards so the rank
// evaluation no longer counts it — we flip status first for that reason.
func (s *SubmissionService) reverseContribution(tx *gorm.DB, sub *models.Submission, ctx EngineContext) error {
	xp, err := s.contributionXP(tx, sub)
	if err != nil {
		return err
	}

	var challenge models.Challenge
	if err := tx.First(&challenge, "id = ?", sub.ChallengeID).Error; err != nil {
		return err
	}

	// Flip status before the rank re-evaluation so this submission stops
	// satisfying requirements.
	if err := tx.Model(&models.Submission{}).Where("id = ?", sub.ID).
		Update("status", models.StatusRejected).Error; err != nil {
		return err
	}
	sub.Status = models.StatusRejected

	if xp > 0 {
		if _, err := s.Progression.applyDelta(tx, sub.AthleteID, challenge.PrimaryDomainID, -xp, ctx.Now, true); err != nil {
			return err
		}
	} else {
		// Tierless approval earned nothing, but rank requirements may still
		// reference the challenge completion.
		if _, _, err := s.Progression.evaluateRanks(tx, sub.AthleteID, challenge.PrimaryDomainID, true); err != nil {
			return err
		}
	}
	return nil
}

// contributionXP is the XP this submission earned when approved: the XP value
// of its highest claimed grade.
func (s *SubmissionService) contributionXP(tx *gorm.DB, sub *models.Submission) (int64, error) {
	if sub.HighestGradeID == nil {
		return 0, nil
	}
	var grade models.Grade
	if err := tx.First(&grade, "id = ?", *sub.HighestGradeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // ladder rung deleted since approval; nothing to reverse
		}
		return 0, err
	}
	return grade.XPValue, nil
}

func lockSubmission(tx *gorm.DB, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := forUpdate(tx).
		First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &sub, nil
}

// matchDivisionTx matches inside the approval transaction so the division set
// the grading uses is the one the transaction sees.
func matchDivisionTx(tx *gorm.DB, athlete *models.Athlete, ctx EngineContext) (*models.Division, error) {
	if athlete.DateOfBirth == nil {
		return nil, nil
	}
	var divisions []models.Division
	if err := tx.Order("sort_order ASC, created_at ASC, id ASC").Find(&divisions).Error; err != nil {
		return nil, err
	}
	return MatchDivision(divisions, *athlete.DateOfBirth, athlete.Gender, ctx.Now), nil
}

// Get returns one submission by id.
func (s *SubmissionService) Get(submissionID string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.DB.First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
		}
		return nil, err
	}
	return &sub, nil
}

// ListForAthlete returns the athlete's submissions, newest first.
func (s *SubmissionService) ListForAthlete(athleteID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.DB.Where("athlete_id = ?", athleteID).Order("updated_at DESC").Find(&subs).Error
	return subs, err
}

// ListPending returns the review queue, oldest first.
func (s *SubmissionService) ListPending(limit int) ([]models.Submission, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var subs []models.Submission
	err := s.DB.Where("status = ?", models.StatusPending).
		Order("created_at ASC").Limit(limit).Find(&subs).Error
	return subs, err
}
