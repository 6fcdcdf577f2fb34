package cmd

import (
	"time"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/store"
)

// xpPerLevel is how much accumulated XP advances the user one level.
const xpPerLevel = 1000

// consistencyWindowDays is the lookback window for the consistency rate.
const consistencyWindowDays = 30

// ledgerStats derives user stats from the points ledger: level from
// accumulated XP, streak from consecutive active days ending today, and
// consistency from the share of active days in the lookback window.
type ledgerStats struct {
	points store.PointsStore
	now    func() time.Time
}

func newLedgerStats(points store.PointsStore) *ledgerStats {
	return &ledgerStats{points: points, now: time.Now}
}

func (l *ledgerStats) Stats(userID string) orchestrator.UserStats {
	stats := orchestrator.UserStats{Level: 1}

	_, xp, err := l.points.Total(userID)
	if err != nil {
		LogError("read points total", err)
		return stats
	}
	stats.Level = 1 + xp/xpPerLevel

	history, err := l.points.History(userID, 0)
	if err != nil {
		LogError("read points history", err)
		return stats
	}

	today := l.now()
	activeDays := make(map[string]bool, len(history))
	for _, entry := range history {
		activeDays[entry.CreatedAt.In(today.Location()).Format("2006-01-02")] = true
	}
	day := today
	for activeDays[day.Format("2006-01-02")] {
		stats.StreakDays++
		day = day.AddDate(0, 0, -1)
	}
	// A streak survives until the current day is over, so an inactive
	// today falls back to counting from yesterday.
	if stats.StreakDays == 0 {
		day = today.AddDate(0, 0, -1)
		for activeDays[day.Format("2006-01-02")] {
			stats.StreakDays++
			day = day.AddDate(0, 0, -1)
		}
	}

	recent := 0
	for i := 0; i < consistencyWindowDays; i++ {
		if activeDays[today.AddDate(0, 0, -i).Format("2006-01-02")] {
			recent++
		}
	}
	stats.Consistency = float64(recent) / float64(consistencyWindowDays)

	return stats
}
