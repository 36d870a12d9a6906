package services

import (
	"testing"

	"athlete-progression-system/models"
)

func TestLevelForXP(t *testing.T) {
	thresholds := models.DefaultLevelThresholds

	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{7499, 9},
		{7500, 10},
		{999999, 10},
	}
	for _, tc := range cases {
		if got := LevelForXP(thresholds, tc.xp); got != tc.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}

	if got := LevelForXP(nil, 5000); got != 1 {
		t.Errorf("empty threshold table: got level %d, want 1", got)
	}

	// Unsorted input must not change the answer.
	shuffled := []models.LevelThreshold{
		{Level: 3, MinXP: 250},
		{Level: 1, MinXP: 0},
		{Level: 2, MinXP: 100},
	}
	if got := LevelForXP(shuffled, 260); got != 3 {
		t.Errorf("unsorted thresholds: got level %d, want 3", got)
	}
}

func TestApplyCreatesRecordAndLevels(t *testing.T) {
	db := newTestDB(t)
	notifier := &stubNotifier{}
	svc := NewProgressionService(db, notifier)

	domain := models.Domain{Name: "Strength", Slug: "strength"}
	mustCreate(t, db, &domain)
	athlete := models.Athlete{ExternalUserID: "ext-prog", Username: "lifter"}
	mustCreate(t, db, &athlete)

	ctx := testCtx("reviewer-1")

	res, err := svc.Apply(ctx, athlete.ID, domain.ID, 120)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.NewXP != 120 || res.NewLevel != 2 || !res.LevelChanged {
		t.Fatalf("got xp=%d level=%d changed=%v, want 120/2/true", res.NewXP, res.NewLevel, res.LevelChanged)
	}

	rec := progressionFor(t, db, athlete.ID, domain.ID)
	if rec.TotalXP != 120 || rec.Level != 2 {
		t.Fatalf("stored xp=%d level=%d, want 120/2", rec.TotalXP, rec.Level)
	}
	if rec.LastLevelUpAt == nil {
		t.Fatal("LastLevelUpAt not set on level increase")
	}

	// Second credit on the same record accumulates.
	res, err = svc.Apply(ctx, athlete.ID, domain.ID, 150)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if res.NewXP != 270 || res.NewLevel != 3 {
		t.Fatalf("got xp=%d level=%d, want 270/3", res.NewXP, res.NewLevel)
	}
}

func TestApplyReverseSymmetry(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db, &stubNotifier{})

	domain := models.Domain{Name: "Endurance", Slug: "endurance"}
	mustCreate(t, db, &domain)
	athlete := models.Athlete{ExternalUserID: "ext-sym", Username: "sym"}
	mustCreate(t, db, &athlete)

	ctx := testCtx("reviewer-1")

	if _, err := svc.Apply(ctx, athlete.ID, domain.ID, 300); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	res, err := svc.Reverse(ctx, athlete.ID, domain.ID, 300)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if res.NewXP != 0 || res.NewLevel != 1 {
		t.Fatalf("after reversal xp=%d level=%d, want 0/1", res.NewXP, res.NewLevel)
	}

	rec := progressionFor(t, db, athlete.ID, domain.ID)
	if rec.TotalXP != 0 || rec.Level != 1 {
		t.Fatalf("stored xp=%d level=%d, want 0/1", rec.TotalXP, rec.Level)
	}
}

func TestReverseClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db, &stubNotifier{})

	domain := models.Domain{Name: "Skill", Slug: "skill"}
	mustCreate(t, db, &domain)
	athlete := models.Athlete{ExternalUserID: "ext-clamp", Username: "clamp"}
	mustCreate(t, db, &athlete)

	ctx := testCtx("reviewer-1")

	if _, err := svc.Apply(ctx, athlete.ID, domain.ID, 50); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// A reversal larger than the balance never drives XP negative.
	res, err := svc.Reverse(ctx, athlete.ID, domain.ID, 500)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if res.NewXP != 0 {
		t.Fatalf("xp = %d, want clamped 0", res.NewXP)
	}
}

func TestGetProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db, &stubNotifier{})

	endurance := models.Domain{Name: "Endurance", Slug: "endurance"}
	strength := models.Domain{Name: "Strength", Slug: "strength"}
	mustCreate(t, db, &endurance)
	mustCreate(t, db, &strength)
	athlete := models.Athlete{ExternalUserID: "ext-progress", Username: "progress"}
	mustCreate(t, db, &athlete)

	ctx := testCtx("reviewer-1")
	if _, err := svc.Apply(ctx, athlete.ID, endurance.ID, 200); err != nil {
		t.Fatalf("Apply endurance: %v", err)
	}
	if _, err := svc.Apply(ctx, athlete.ID, strength.ID, 50); err != nil {
		t.Fatalf("Apply strength: %v", err)
	}

	records, ranks, err := svc.GetProgress(athlete.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d progression records, want 2", len(records))
	}
	if len(ranks) != 0 {
		t.Fatalf("got %d ranks, want none", len(ranks))
	}
}
