package models

// GradingType says which direction of an achieved value counts as better.
type GradingType string

const (
	GradingLowerBetter  GradingType = "lower_better"  // e.g. time — faster wins
	GradingHigherBetter GradingType = "higher_better" // e.g. reps, distance
)

func (g GradingType) Valid() bool {
	switch g {
	case GradingLowerBetter, GradingHigherBetter:
		return true
	}
	return false
}

// ProofType declares what kind of evidence backs a submission.
type ProofType string

const (
	ProofVideo      ProofType = "video"
	ProofImage      ProofType = "image"
	ProofStrava     ProofType = "strava"
	ProofGarmin     ProofType = "garmin"
	ProofRaceResult ProofType = "race_result"
	ProofManual     ProofType = "manual" // supervised attempt, needs supervisor reference
)

func (p ProofType) Valid() bool {
	switch p {
	case ProofVideo, ProofImage, ProofStrava, ProofGarmin, ProofRaceResult, ProofManual:
		return true
	}
	return false
}

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	StatusPending       SubmissionStatus = "pending"
	StatusApproved      SubmissionStatus = "approved"
	StatusRejected      SubmissionStatus = "rejected"
	StatusNeedsRevision SubmissionStatus = "needs_revision"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusNeedsRevision:
		return true
	}
	return false
}

// Terminal reports whether the status ends the normal review flow.
// Admin override can still reopen — that path lives outside the engine.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ChallengeStatus mirrors the publish lifecycle of admin-authored challenges.
type ChallengeStatus string

const (
	ChallengeDraft     ChallengeStatus = "draft"
	ChallengeScheduled ChallengeStatus = "scheduled"
	ChallengePublished ChallengeStatus = "published"
	ChallengeArchived  ChallengeStatus = "archived"
)
