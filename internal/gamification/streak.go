package gamification

import "time"

// NextStreak returns the streak value after a qualifying daily completion at
// now. prevCompleted is the previous completion instant, nil if none exists.
func NextStreak(p PeriodResolver, prevCompleted *time.Time, now time.Time, current int) int {
	if prevCompleted == nil {
		return 1
	}

	today := p.StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	switch {
	case !prevCompleted.Before(today):
		// already counted for this period
		if current < 1 {
			return 1
		}
		return current
	case !prevCompleted.Before(yesterday):
		return current + 1
	default:
		return 1
	}
}

// StreakExpired reports whether at least one full daily period elapsed since
// the last activity, which resets the streak to zero.
func StreakExpired(p PeriodResolver, lastActive *time.Time, now time.Time) bool {
	if lastActive == nil {
		return false
	}
	return lastActive.Before(p.StartOfDay(now).AddDate(0, 0, -1))
}
