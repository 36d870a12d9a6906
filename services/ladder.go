package services

import (
	"sort"

	"athlete-progression-system/models"
)

// LadderResult is the outcome of resolving an achieved value against one
// division's grade ladder. Claimed holds the satisfied prefix of the ladder,
// easiest first; Highest is the last element of that prefix.
type LadderResult struct {
	Highest *models.Grade
	Claimed []models.Grade
}

// Graded reports whether at least one tier was satisfied.
func (r LadderResult) Graded() bool {
	return r.Highest != nil
}

// ClaimedRanks returns the claimed rank numbers, easiest first.
func (r LadderResult) ClaimedRanks() []int {
	ranks := make([]int, len(r.Claimed))
	for i, g := range r.Claimed {
		ranks[i] = g.Rank
	}
	return ranks
}

// ResolveLadder grades an achieved value against a ladder. The grades passed
// in must already be restricted to the athlete's matched division; an empty
// slice means the challenge is ungraded for that athlete.
//
// The ladder is a nested sequence of increasingly strict thresholds, so
// satisfying a harder tier implies satisfying every easier one. We order
// easiest-first and take the satisfied prefix: the scan stops at the first
// unsatisfied tier, which keeps the claimed set monotonic even if the
// authored target values are degenerate.
func ResolveLadder(achieved float64, grades []models.Grade, gradingType models.GradingType) LadderResult {
	if len(grades) == 0 {
		return LadderResult{}
	}

	ladder := make([]models.Grade, len(grades))
	copy(ladder, grades)
	sortEasiestFirst(ladder, gradingType)

	var claimed []models.Grade
	for i := range ladder {
		if !tierSatisfied(achieved, ladder[i].TargetValue, gradingType) {
			break
		}
		claimed = append(claimed, ladder[i])
	}

	if len(claimed) == 0 {
		return LadderResult{}
	}
	return LadderResult{
		Highest: &claimed[len(claimed)-1],
		Claimed: claimed,
	}
}

// sortEasiestFirst orders a ladder by increasing difficulty. For
// lower-is-better metrics the easiest rung has the largest target; for
// higher-is-better the smallest. Equal target values across two rungs are a
// data-authoring mistake — the Rank sequence breaks the tie so the result
// stays deterministic instead of erroring.
func sortEasiestFirst(ladder []models.Grade, gradingType models.GradingType) {
	sort.SliceStable(ladder, func(i, j int) bool {
		a, b := ladder[i], ladder[j]
		if a.TargetValue != b.TargetValue {
			if gradingType == models.GradingLowerBetter {
				return a.TargetValue > b.TargetValue
			}
			return a.TargetValue < b.TargetValue
		}
		return a.Rank < b.Rank
	})
}

// tierSatisfied: GradingType is closed and validated at challenge creation,
// so a non-lower-better type is higher-better.
func tierSatisfied(achieved, target float64, gradingType models.GradingType) bool {
	if gradingType == models.GradingLowerBetter {
		return achieved <= target
	}
	return achieved >= target
}
