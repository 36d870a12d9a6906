package services

import (
	"sync"
	"testing"
	"time"

	"athlete-progression-system/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database. A single connection keeps
// every statement on the same SQLite handle.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Athlete{},
		&models.Domain{},
		&models.Category{},
		&models.EquipmentItem{},
		&models.ChallengeEquipment{},
		&models.Division{},
		&models.Challenge{},
		&models.Grade{},
		&models.Submission{},
		&models.ProgressionRecord{},
		&models.LevelThreshold{},
		&models.RankDefinition{},
		&models.RankRequirement{},
		&models.AthleteRank{},
		&models.ActivityMirror{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	for _, threshold := range models.DefaultLevelThresholds {
		row := threshold
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed thresholds: %v", err)
		}
	}
	return db
}

// stubNotifier records events instead of delivering them.
type stubNotifier struct {
	mu       sync.Mutex
	approved []string
	rejected []string
	unlocked []string
}

func (n *stubNotifier) SubmissionApproved(sub *models.Submission, _ *ProgressionResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, sub.ID)
}

func (n *stubNotifier) SubmissionRejected(sub *models.Submission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, sub.ID)
}

func (n *stubNotifier) RankUnlocked(_ string, rank models.RankDefinition) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unlocked = append(n.unlocked, rank.Name)
}

func (n *stubNotifier) unlockedNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.unlocked...)
}

func testCtx(actor string) EngineContext {
	return EngineContext{
		ActorID: actor,
		Roles:   []string{"reviewer", "admin"},
		Now:     time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func strPtr(s string) *string   { return &s }
func intPtr(n int) *int         { return &n }
func f64Ptr(v float64) *float64 { return &v }

type gradingFixture struct {
	Domain    models.Domain
	Category  models.Category
	Division  models.Division
	Athlete   models.Athlete
	Challenge models.Challenge
	Grades    []models.Grade
}

// seedGradingFixture creates one domain, category, open division, athlete,
// and a published challenge with a ladder built from targets/xp pairs.
func seedGradingFixture(t *testing.T, db *gorm.DB, gradingType models.GradingType, targets []float64, xp []int64) gradingFixture {
	t.Helper()

	fx := gradingFixture{}

	fx.Domain = models.Domain{Name: "Endurance", Slug: "endurance"}
	mustCreate(t, db, &fx.Domain)

	fx.Category = models.Category{DomainID: fx.Domain.ID, Name: "Running", Slug: "endurance-running"}
	mustCreate(t, db, &fx.Category)

	fx.Division = models.Division{Name: "Open", SortOrder: 10}
	mustCreate(t, db, &fx.Division)

	dob := time.Date(1996, 3, 1, 0, 0, 0, 0, time.UTC)
	fx.Athlete = models.Athlete{
		ExternalUserID: "ext-" + t.Name(),
		Username:       "runner",
		DateOfBirth:    &dob,
	}
	mustCreate(t, db, &fx.Athlete)

	fx.Challenge = models.Challenge{
		CategoryID:      fx.Category.ID,
		PrimaryDomainID: fx.Domain.ID,
		Name:            "5K",
		Slug:            "5k-" + t.Name(),
		GradingType:     gradingType,
		GradingUnit:     "seconds",
		Status:          models.ChallengePublished,
	}
	mustCreate(t, db, &fx.Challenge)

	for i, target := range targets {
		g := models.Grade{
			ChallengeID: fx.Challenge.ID,
			DivisionID:  fx.Division.ID,
			Rank:        i + 1,
			TargetValue: target,
			XPValue:     xp[i],
		}
		mustCreate(t, db, &g)
		fx.Grades = append(fx.Grades, g)
	}
	return fx
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func progressionFor(t *testing.T, db *gorm.DB, athleteID, domainID string) models.ProgressionRecord {
	t.Helper()
	var rec models.ProgressionRecord
	if err := db.Where("athlete_id = ? AND domain_id = ?", athleteID, domainID).First(&rec).Error; err != nil {
		t.Fatalf("load progression record: %v", err)
	}
	return rec
}
