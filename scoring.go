package main

import (
	"math"
	"time"
)

// Scoring constants are part of the wire-visible contract; clients display
// the exact values, so changing them is a breaking change.
const (
	basePoints          = 1000
	maxTimeBonus        = 500
	streakBonus         = 100
	maxStreakMultiplier = 5
)

// calculateScore returns the points earned for one answer and the player's
// updated streak. A wrong or missing answer always scores zero and resets
// the streak. A correct answer earns the base plus a time bonus decaying
// linearly from maxTimeBonus at t=0 to zero at the deadline, plus a streak
// bonus that caps at maxStreakMultiplier even though the streak itself
// keeps counting. Answer times outside [0, timeLimit] are clamped, never
// rejected.
func calculateScore(correct bool, answerTime, timeLimit time.Duration, currentStreak int) (points, newStreak int) {
	if !correct {
		return 0, 0
	}

	clamped := min(max(answerTime, 0), timeLimit)
	timeBonus := int(math.Round(maxTimeBonus * (1 - float64(clamped)/float64(timeLimit))))

	multiplier := min(currentStreak, maxStreakMultiplier)

	return basePoints + timeBonus + multiplier*streakBonus, currentStreak + 1
}
