package progress

import "progresstracker/backend/models"

// StreakChange describes what an activity event did to a streak.
type StreakChange string

const (
	StreakStarted   StreakChange = "started"
	StreakUnchanged StreakChange = "unchanged"
	StreakExtended  StreakChange = "extended"
	StreakReset     StreakChange = "reset"
	// StreakClockSkew is a reset caused by a last-active date after today
	// or one that cannot be parsed.
	StreakClockSkew StreakChange = "clock_skew"
)

// UpdateStreak applies one activity on the calendar date today to s.
//
// Same-day activity leaves s untouched, the day after lastActiveDate
// extends the streak, and anything else restarts it at 1. Longest never
// decreases.
func UpdateStreak(s models.StreakData, today string) (models.StreakData, StreakChange) {
	if s.LastActiveDate == "" {
		s.Current = 1
		s.Longest = max(s.Longest, 1)
		s.LastActiveDate = today
		return s, StreakStarted
	}
	if s.LastActiveDate == today {
		return s, StreakUnchanged
	}

	diff, err := daysBetween(s.LastActiveDate, today)
	switch {
	case err == nil && diff == 1:
		s.Current++
		s.Longest = max(s.Longest, s.Current)
		s.LastActiveDate = today
		return s, StreakExtended
	case err == nil && diff > 1:
		s.Current = 1
		s.Longest = max(s.Longest, 1)
		s.LastActiveDate = today
		return s, StreakReset
	default:
		s.Current = 1
		s.Longest = max(s.Longest, 1)
		s.LastActiveDate = today
		return s, StreakClockSkew
	}
}

// StreakState is the user-facing health of a streak.
type StreakState string

const (
	StreakSafe    StreakState = "safe"
	StreakWarning StreakState = "warning"
	StreakLost    StreakState = "lost"
)

type StreakStatus struct {
	Status         StreakState `json:"status"`
	Current        int         `json:"current"`
	Longest        int         `json:"longest"`
	LastActiveDate string      `json:"lastActiveDate"`
	ActiveToday    bool        `json:"activeToday"`
	NeverStarted   bool        `json:"neverStarted"`
	Message        string      `json:"message"`
}

// StatusOn derives the streak status as seen on the date today. It never
// modifies s; a lost streak reports Current 0 while the stored count stays
// stale until the next completion resets it.
func StatusOn(s models.StreakData, today string) StreakStatus {
	st := StreakStatus{
		Longest:        s.Longest,
		LastActiveDate: s.LastActiveDate,
	}

	if s.LastActiveDate == "" {
		st.Status = StreakSafe
		st.NeverStarted = true
		return st
	}
	if s.LastActiveDate == today {
		st.Status = StreakSafe
		st.Current = s.Current
		st.ActiveToday = true
		return st
	}

	diff, err := daysBetween(s.LastActiveDate, today)
	if err == nil && diff == 1 {
		st.Status = StreakWarning
		st.Current = s.Current
		return st
	}

	st.Status = StreakLost
	return st
}
