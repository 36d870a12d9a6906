package services

import (
	"errors"
	"testing"

	"athlete-progression-system/models"
)

func newSubmissionHarness(t *testing.T, gradingType models.GradingType, targets []float64, xp []int64) (*SubmissionService, *stubNotifier, gradingFixture) {
	t.Helper()
	db := newTestDB(t)
	notifier := &stubNotifier{}
	progression := NewProgressionService(db, notifier)
	svc := NewSubmissionService(db, progression, notifier)
	fx := seedGradingFixture(t, db, gradingType, targets, xp)
	return svc, notifier, fx
}

func TestValidateProof(t *testing.T) {
	cases := []struct {
		name  string
		req   CreateSubmissionRequest
		field string // empty = expect valid
	}{
		{"video needs url", CreateSubmissionRequest{ProofType: models.ProofVideo}, "proof_url"},
		{"video with url ok", CreateSubmissionRequest{ProofType: models.ProofVideo, ProofURL: "https://cdn/x.mp4"}, ""},
		{"strava needs activity id", CreateSubmissionRequest{ProofType: models.ProofStrava}, "external_activity_id"},
		{"garmin empty activity id", CreateSubmissionRequest{ProofType: models.ProofGarmin, ExternalActivityID: strPtr("")}, "external_activity_id"},
		{"manual needs supervisor", CreateSubmissionRequest{ProofType: models.ProofManual}, "supervisor_name"},
		{"manual with supervisor ok", CreateSubmissionRequest{ProofType: models.ProofManual, SupervisorName: strPtr("Coach K")}, ""},
		{"unknown proof type", CreateSubmissionRequest{ProofType: "carrier_pigeon"}, "proof_type"},
		{"negative achieved value", CreateSubmissionRequest{ProofType: models.ProofManual, SupervisorName: strPtr("Coach K"), AchievedValue: f64Ptr(-1)}, "achieved_value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProof(&tc.req)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			ve, ok := IsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %s, want %s", ve.Field, tc.field)
			}
		})
	}
}

func TestCreateOrResubmitUpsertsSingleRow(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	first, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run1.mp4",
		AchievedValue: f64Ptr(1700),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending", first.Status)
	}

	// Second attempt mutates the same row instead of inserting another.
	second, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run2.mp4",
		AchievedValue: f64Ptr(1400),
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.ProofURL != "https://cdn/run2.mp4" {
		t.Errorf("proof url not overwritten: %s", second.ProofURL)
	}

	var count int64
	if err := svc.DB.Model(&models.Submission{}).
		Where("athlete_id = ? AND challenge_id = ?", fx.Athlete.ID, fx.Challenge.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("found %d rows for (athlete, challenge), want exactly 1", count)
	}
}

func TestCreateOrResubmitRejectsUnknownChallenge(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{10})
	ctx := testCtx("reviewer-1")

	_, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID: "no-such-challenge",
		ProofType:   models.ProofVideo,
		ProofURL:    "https://cdn/x.mp4",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateOrResubmitBlockedWhileApproved(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1600),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID, nil, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run2.mp4",
		AchievedValue: f64Ptr(1400),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict for resubmission over an approved result", err)
	}
}

func TestCreateOrResubmitImportedProofTakesMirrorValue(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{10})
	ctx := testCtx("reviewer-1")

	_, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:        fx.Challenge.ID,
		ProofType:          models.ProofStrava,
		ExternalActivityID: strPtr("strava-404"),
	})
	if _, ok := IsValidation(err); !ok {
		t.Fatalf("err = %v, want validation error for unimported activity", err)
	}

	mustCreate(t, svc.DB, &models.ActivityMirror{
		ExternalActivityID: "strava-77",
		Provider:           "strava",
		AthleteExternalID:  fx.Athlete.ExternalUserID,
		MetricValue:        1234,
		MetricUnit:         "seconds",
	})

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:        fx.Challenge.ID,
		ProofType:          models.ProofStrava,
		ExternalActivityID: strPtr("strava-77"),
	})
	if err != nil {
		t.Fatalf("create with mirror: %v", err)
	}
	if sub.AchievedValue == nil || *sub.AchievedValue != 1234 {
		t.Fatalf("achieved value = %v, want 1234 from the mirror", sub.AchievedValue)
	}
}

func TestApproveGradesAndCreditsXP(t *testing.T) {
	svc, notifier, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1350),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.Approve(ctx, sub.ID, nil, "looks legit")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !res.Graded || res.NoOp {
		t.Fatalf("graded=%v noop=%v, want graded non-noop", res.Graded, res.NoOp)
	}
	if res.Submission.Status != models.StatusApproved {
		t.Fatalf("status = %s, want approved", res.Submission.Status)
	}
	if res.Submission.DivisionID == nil || *res.Submission.DivisionID != fx.Division.ID {
		t.Fatalf("division = %v, want %s", res.Submission.DivisionID, fx.Division.ID)
	}
	// 1350s beats the 1500 target but not 1200: highest claimed is rank 2.
	if got := res.Submission.HighestClaimedRank(); got != 2 {
		t.Fatalf("highest claimed rank = %d, want 2", got)
	}
	if res.Progression == nil || res.Progression.NewXP != 25 {
		t.Fatalf("progression = %+v, want 25 XP", res.Progression)
	}
	if res.Submission.ReviewerID == nil || *res.Submission.ReviewerID != "reviewer-1" {
		t.Errorf("reviewer = %v, want reviewer-1", res.Submission.ReviewerID)
	}

	rec := progressionFor(t, svc.DB, fx.Athlete.ID, fx.Domain.ID)
	if rec.TotalXP != 25 {
		t.Fatalf("stored xp = %d, want 25", rec.TotalXP)
	}
	if len(notifier.approved) != 1 {
		t.Errorf("approval notifications = %d, want 1", len(notifier.approved))
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1350),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID, nil, ""); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	// Same value again: no-op, XP untouched.
	res, err := svc.Approve(ctx, sub.ID, f64Ptr(1350), "")
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if !res.NoOp {
		t.Fatal("re-approval with unchanged value must be a no-op")
	}
	rec := progressionFor(t, svc.DB, fx.Athlete.ID, fx.Domain.ID)
	if rec.TotalXP != 25 {
		t.Fatalf("xp after duplicate approval = %d, want 25 (not double-credited)", rec.TotalXP)
	}
}

func TestApproveRegradeNetsXP(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1350),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID, nil, ""); err != nil {
		t.Fatalf("approve at 1350: %v", err)
	}

	// Corrected value reaches the top tier: credit becomes 50, not 25+50.
	res, err := svc.Approve(ctx, sub.ID, f64Ptr(1150), "corrected from video timestamp")
	if err != nil {
		t.Fatalf("re-approve at 1150: %v", err)
	}
	if res.NoOp {
		t.Fatal("changed value must not be a no-op")
	}
	if got := res.Submission.HighestClaimedRank(); got != 3 {
		t.Fatalf("highest claimed rank = %d, want 3", got)
	}
	rec := progressionFor(t, svc.DB, fx.Athlete.ID, fx.Domain.ID)
	if rec.TotalXP != 50 {
		t.Fatalf("xp after re-grade = %d, want 50", rec.TotalXP)
	}
}

func TestApproveWithoutDivisionIsTierless(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{10})
	ctx := testCtx("reviewer-1")

	// Athlete without a date of birth never matches a division.
	nodob := models.Athlete{ExternalUserID: "ext-nodob", Username: "nodob"}
	mustCreate(t, svc.DB, &nodob)

	sub, err := svc.CreateOrResubmit(ctx, nodob.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.Approve(ctx, sub.ID, nil, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Graded {
		t.Fatal("ungraded athlete must not claim tiers")
	}
	if res.Submission.Status != models.StatusApproved {
		t.Fatalf("status = %s, want approved (plain completion)", res.Submission.Status)
	}
	if res.Submission.HighestGradeID != nil {
		t.Fatalf("highest grade = %v, want nil", res.Submission.HighestGradeID)
	}
}

func TestRejectAndRevisionTransitions(t *testing.T) {
	svc, notifier, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{10})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(2000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	revised, err := svc.RequestRevision(ctx, sub.ID, "camera angle hides the clock")
	if err != nil {
		t.Fatalf("request revision: %v", err)
	}
	if revised.Status != models.StatusNeedsRevision {
		t.Fatalf("status = %s, want needs_revision", revised.Status)
	}

	// Revision can only be requested while pending.
	if _, err := svc.RequestRevision(ctx, sub.ID, "again"); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// Resubmission re-enters pending, then gets rejected.
	if _, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run2.mp4",
		AchievedValue: f64Ptr(1900),
	}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	rejected, err := svc.Reject(ctx, sub.ID, "target not met")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if len(notifier.rejected) != 1 {
		t.Errorf("rejection notifications = %d, want 1", len(notifier.rejected))
	}

	if _, err := svc.Reject(ctx, sub.ID, "again"); !errors.Is(err, ErrConflict) {
		t.Fatalf("double reject err = %v, want ErrConflict", err)
	}
}

func TestRejectAfterApprovalReversesXP(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1350),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID, nil, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := svc.Reject(ctx, sub.ID, "proof was doctored"); err != nil {
		t.Fatalf("reject after approval: %v", err)
	}
	rec := progressionFor(t, svc.DB, fx.Athlete.ID, fx.Domain.ID)
	if rec.TotalXP != 0 {
		t.Fatalf("xp after reversal = %d, want 0", rec.TotalXP)
	}
}

func TestDeleteApprovedReversesXP(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1350),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID, nil, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := svc.Delete(ctx, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(sub.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v, want ErrNotFound", err)
	}
	rec := progressionFor(t, svc.DB, fx.Athlete.ID, fx.Domain.ID)
	if rec.TotalXP != 0 {
		t.Fatalf("xp after delete = %d, want 0", rec.TotalXP)
	}
}

func TestRankUnlockAndRevocation(t *testing.T) {
	svc, notifier, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800, 1500, 1200}, []int64{10, 25, 50})
	ctx := testCtx("reviewer-1")

	rank := models.RankDefinition{
		DomainID:  fx.Domain.ID,
		Name:      "Iron",
		Slug:      "endurance-iron",
		SortOrder: 1,
	}
	mustCreate(t, svc.DB, &rank)
	mustCreate(t, svc.DB, &models.RankRequirement{
		RankID:       rank.ID,
		ChallengeID:  fx.Challenge.ID,
		MinGradeRank: 2,
	})

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1700),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 1700s only claims rank 1: requirement (>= 2) not met yet.
	res, err := svc.Approve(ctx, sub.ID, nil, "")
	if err != nil {
		t.Fatalf("approve at 1700: %v", err)
	}
	if len(res.Progression.RanksUnlocked) != 0 {
		t.Fatalf("unlocked %v, want none at rank 1", res.Progression.RanksUnlocked)
	}

	// Re-grade to 1350: claims rank 2, requirement satisfied.
	res, err = svc.Approve(ctx, sub.ID, f64Ptr(1350), "")
	if err != nil {
		t.Fatalf("approve at 1350: %v", err)
	}
	if len(res.Progression.RanksUnlocked) != 1 || res.Progression.RanksUnlocked[0].ID != rank.ID {
		t.Fatalf("unlocked = %v, want [Iron]", res.Progression.RanksUnlocked)
	}
	if got := notifier.unlockedNames(); len(got) != 1 || got[0] != "Iron" {
		t.Fatalf("unlock notifications = %v, want [Iron]", got)
	}

	var held int64
	if err := svc.DB.Model(&models.AthleteRank{}).
		Where("athlete_id = ? AND rank_id = ?", fx.Athlete.ID, rank.ID).
		Count(&held).Error; err != nil {
		t.Fatalf("count athlete ranks: %v", err)
	}
	if held != 1 {
		t.Fatalf("athlete rank rows = %d, want 1", held)
	}

	// Deleting the approved submission revokes the rank it justified.
	if err := svc.Delete(ctx, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DB.Model(&models.AthleteRank{}).
		Where("athlete_id = ? AND rank_id = ?", fx.Athlete.ID, rank.ID).
		Count(&held).Error; err != nil {
		t.Fatalf("count after delete: %v", err)
	}
	if held != 0 {
		t.Fatalf("athlete rank rows after reversal = %d, want 0", held)
	}
}

func TestListPendingQueue(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{10})
	ctx := testCtx("reviewer-1")

	second := models.Athlete{ExternalUserID: "ext-second", Username: "second"}
	mustCreate(t, svc.DB, &second)

	for _, athleteID := range []string{fx.Athlete.ID, second.ID} {
		if _, err := svc.CreateOrResubmit(ctx, athleteID, &CreateSubmissionRequest{
			ChallengeID:   fx.Challenge.ID,
			ProofType:     models.ProofVideo,
			ProofURL:      "https://cdn/run.mp4",
			AchievedValue: f64Ptr(1700),
		}); err != nil {
			t.Fatalf("create for %s: %v", athleteID, err)
		}
	}

	queue, err := svc.ListPending(50)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(queue))
	}
}

func TestApproveZeroXPTierStillUnlocksRank(t *testing.T) {
	// A rung authored without an XP value still counts toward rank
	// requirements once claimed.
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{0})
	ctx := testCtx("reviewer-1")

	rank := models.RankDefinition{
		DomainID:  fx.Domain.ID,
		Name:      "Finisher",
		Slug:      "endurance-finisher",
		SortOrder: 1,
	}
	mustCreate(t, svc.DB, &rank)
	mustCreate(t, svc.DB, &models.RankRequirement{
		RankID:       rank.ID,
		ChallengeID:  fx.Challenge.ID,
		MinGradeRank: 1,
	})

	sub, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
		ChallengeID:   fx.Challenge.ID,
		ProofType:     models.ProofVideo,
		ProofURL:      "https://cdn/run.mp4",
		AchievedValue: f64Ptr(1700),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.Approve(ctx, sub.ID, nil, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !res.Graded {
		t.Fatal("expected a graded approval")
	}
	if res.Progression == nil {
		t.Fatal("rank evaluation must run even when the claimed tier carries no XP")
	}
	if len(res.Progression.RanksUnlocked) != 1 || res.Progression.RanksUnlocked[0].ID != rank.ID {
		t.Fatalf("unlocked = %v, want [Finisher]", res.Progression.RanksUnlocked)
	}

	var held int64
	if err := svc.DB.Model(&models.AthleteRank{}).
		Where("athlete_id = ? AND rank_id = ?", fx.Athlete.ID, rank.ID).
		Count(&held).Error; err != nil {
		t.Fatalf("count athlete ranks: %v", err)
	}
	if held != 1 {
		t.Fatalf("athlete rank rows = %d, want 1", held)
	}
}

func TestCreateInsertErrorMapping(t *testing.T) {
	svc, _, fx := newSubmissionHarness(t, models.GradingLowerBetter, []float64{1800}, []int64{10})
	ctx := testCtx("reviewer-1")

	t.Run("duplicate key maps to conflict", func(t *testing.T) {
		// A soft-deleted row is invisible to the pending-row lookup but still
		// occupies the unique index, so the insert collides the same way a
		// concurrent create would.
		blocker := models.Submission{
			AthleteID:   fx.Athlete.ID,
			ChallengeID: fx.Challenge.ID,
			ProofType:   models.ProofVideo,
			ProofURL:    "https://cdn/old.mp4",
			Status:      models.StatusPending,
		}
		mustCreate(t, svc.DB, &blocker)
		if err := svc.DB.Delete(&blocker).Error; err != nil {
			t.Fatalf("soft delete: %v", err)
		}

		_, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
			ChallengeID:   fx.Challenge.ID,
			ProofType:     models.ProofVideo,
			ProofURL:      "https://cdn/new.mp4",
			AchievedValue: f64Ptr(1700),
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict for a unique index collision", err)
		}
	})

	t.Run("other database errors pass through", func(t *testing.T) {
		if err := svc.DB.Migrator().DropTable(&models.Submission{}); err != nil {
			t.Fatalf("drop table: %v", err)
		}

		_, err := svc.CreateOrResubmit(ctx, fx.Athlete.ID, &CreateSubmissionRequest{
			ChallengeID:   fx.Challenge.ID,
			ProofType:     models.ProofVideo,
			ProofURL:      "https://cdn/new.mp4",
			AchievedValue: f64Ptr(1700),
		})
		if err == nil {
			t.Fatal("expected an error from the missing table")
		}
		if errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, must not be disguised as a conflict", err)
		}
	})
}
