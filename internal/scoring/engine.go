// Package scoring computes points and XP awards from base values, source
// weights and multiplier effects. All functions are pure; wall-clock time
// only enters through the hour the caller passes to ForTimeOfDay.
package scoring

import (
	"math"

	"github.com/strideapp/stride/models"
)

// ComputePoints folds a set of multipliers over a base award.
//
// The factor components compose multiplicatively, the flat bonuses
// additively. Level-type multipliers contribute only their factor; every
// other kind contributes both factor and bonus. A flat level bonus of
// userLevel*2 is always added. The result is floored at 1 so every award
// is worth something.
func ComputePoints(sourceWeight, baseValue int, multipliers []models.PointsMultiplier, userLevel int) int {
	base := float64(sourceWeight * baseValue)

	totalFactor := 1.0
	bonus := 0
	for _, m := range multipliers {
		switch m.Kind {
		case models.MultiplierLevel:
			totalFactor *= m.Factor
		default:
			totalFactor *= m.Factor
			bonus += m.Bonus
		}
	}

	bonus += userLevel * 2

	points := int(math.Floor(base*totalFactor)) + bonus
	if points < 1 {
		points = 1
	}
	return points
}

// ComputeXP returns the experience award for the same inputs: twice the
// points value.
func ComputeXP(sourceWeight, baseValue int, multipliers []models.PointsMultiplier, userLevel int) int {
	return ComputePoints(sourceWeight, baseValue, multipliers, userLevel) * 2
}

// ForLevel returns the level multiplier: 1.0 + level*0.05, no flat bonus.
func ForLevel(level int) models.PointsMultiplier {
	return models.PointsMultiplier{
		Kind:   models.MultiplierLevel,
		Factor: 1.0 + float64(level)*0.05,
	}
}

// ForStreak maps a streak length in days onto its tier. Tiers are
// half-open on the upper edge; the top tier is unbounded.
func ForStreak(days int) models.PointsMultiplier {
	var factor float64
	var bonus int
	switch {
	case days >= 365:
		factor, bonus = 5.0, 1000
	case days >= 200:
		factor, bonus = 4.0, 500
	case days >= 100:
		factor, bonus = 3.0, 200
	case days >= 60:
		factor, bonus = 2.5, 100
	case days >= 30:
		factor, bonus = 2.0, 50
	case days >= 14:
		factor, bonus = 1.5, 25
	case days >= 7:
		factor, bonus = 1.2, 10
	default:
		factor, bonus = 1.0, 0
	}
	return models.PointsMultiplier{Kind: models.MultiplierStreak, Factor: factor, Bonus: bonus}
}

// ForConsistency maps a trailing-window completion rate onto its tier.
// The rate is computed by the caller as distinct active days over a
// 30-day window divided by 30; this function only consumes it. Tiers are
// half-open except the top one, which is closed at 1.0.
func ForConsistency(rate float64) models.PointsMultiplier {
	var factor float64
	var bonus int
	switch {
	case rate >= 0.95:
		factor, bonus = 2.0, 100
	case rate >= 0.9:
		factor, bonus = 1.5, 50
	case rate >= 0.8:
		factor, bonus = 1.3, 20
	case rate >= 0.7:
		factor, bonus = 1.2, 10
	case rate >= 0.5:
		factor, bonus = 1.1, 0
	default:
		factor, bonus = 1.0, 0
	}
	return models.PointsMultiplier{Kind: models.MultiplierConsistency, Factor: factor, Bonus: bonus}
}

// ForTimeOfDay maps an hour on the 24h clock onto its tier. Early morning
// work earns the largest boost, the small hours the largest of all.
func ForTimeOfDay(hour int) models.PointsMultiplier {
	var factor float64
	var bonus int
	switch {
	case hour >= 6 && hour < 9:
		factor, bonus = 1.3, 5
	case hour >= 9 && hour < 12:
		factor, bonus = 1.1, 2
	case hour >= 12 && hour < 18:
		factor, bonus = 1.0, 0
	case hour >= 18 && hour < 21:
		factor, bonus = 1.1, 2
	case hour >= 21 && hour < 24:
		factor, bonus = 1.2, 3
	default: // [0,6)
		factor, bonus = 1.5, 10
	}
	return models.PointsMultiplier{Kind: models.MultiplierTimeOfDay, Factor: factor, Bonus: bonus}
}

// Special builds an ad-hoc multiplier for events outside the standard
// tiers (seasonal boosts, one-off challenges).
func Special(factor float64, bonus int) models.PointsMultiplier {
	return models.PointsMultiplier{Kind: models.MultiplierSpecial, Factor: factor, Bonus: bonus}
}
