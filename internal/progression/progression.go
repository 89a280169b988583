// Package progression derives a player's level from accumulated experience
// points. All functions are pure and total: any input maps to a valid level.
package progression

import "math"

// LevelFromXP returns the level for the given experience points,
// floor(0.1 * sqrt(xp)) + 1. Negative input is clamped to 0, so the
// result is always >= 1.
func LevelFromXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Floor(0.1*math.Sqrt(float64(xp)))) + 1
}

// XPRequiredForLevel returns the cumulative XP needed to reach level.
// It is the exact algebraic inverse of LevelFromXP:
// LevelFromXP(XPRequiredForLevel(L)) == L for all L >= 1.
func XPRequiredForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	step := int64(10 * (level - 1))
	return step * step
}

// ProgressToNextLevel returns the percentage in [0, 100] of the way from
// the current level's threshold to the next one. Degenerate boundaries
// report 100.
func ProgressToNextLevel(xp int64) float64 {
	if xp < 0 {
		xp = 0
	}
	level := LevelFromXP(xp)
	lo := XPRequiredForLevel(level)
	hi := XPRequiredForLevel(level + 1)
	if hi <= lo {
		return 100
	}
	progress := 100 * float64(xp-lo) / float64(hi-lo)
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
