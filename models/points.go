package models

import "time"

// PointsSource identifies what kind of event earned points.
type PointsSource string

const (
	SourceTask    PointsSource = "task"
	SourceSubtask PointsSource = "subtask"
	SourceHabit   PointsSource = "habit"
	SourceGoal    PointsSource = "goal"
	SourceBudget  PointsSource = "budget"
)

// Weight returns the base point weight for the source type.
func (s PointsSource) Weight() int {
	switch s {
	case SourceTask:
		return 10
	case SourceSubtask:
		return 5
	case SourceHabit:
		return 5
	case SourceGoal:
		return 20
	case SourceBudget:
		return 8
	default:
		return 1
	}
}

// MultiplierKind tags the variant of a PointsMultiplier.
type MultiplierKind string

const (
	MultiplierLevel       MultiplierKind = "level"
	MultiplierStreak      MultiplierKind = "streak"
	MultiplierTimeOfDay   MultiplierKind = "timeOfDay"
	MultiplierConsistency MultiplierKind = "consistency"
	MultiplierSpecial     MultiplierKind = "special"
)

// PointsMultiplier is one multiplier effect applied to a points award.
// Factors compose multiplicatively, flat bonuses additively. A level
// multiplier carries no flat bonus.
type PointsMultiplier struct {
	Kind   MultiplierKind `json:"kind"`
	Factor float64        `json:"factor"`
	Bonus  int            `json:"bonus,omitempty"`
}

// PointsEntry is one immutable row of the points ledger. Entries are
// created once per award and never mutated; a user's total is the sum
// over their entries.
type PointsEntry struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Amount    int          `json:"amount"`
	XP        int          `json:"xp"`
	Source    PointsSource `json:"source"`
	SourceID  string       `json:"sourceId,omitempty"`
	Reason    string       `json:"reason"`
	CreatedAt time.Time    `json:"createdAt"`
}
