package progress

import "fmt"

var (
	neverStartedMessages = []string{
		"Complete your first topic to start a streak!",
		"Every expert was once a beginner. Start learning today!",
		"Pick a topic and begin your learning streak.",
	}
	activeMessages = []string{
		"You're on fire! %d day streak!",
		"Keep it up! %d days and counting.",
		"Consistency pays off: %d day streak!",
	}
	warningMessages = []string{
		"Don't lose your %d day streak! Complete a topic today.",
		"Your %d day streak is at risk. One topic keeps it alive!",
	}
	lostMessages = []string{
		"Your streak ended, but today is a fresh start.",
		"Streaks come and go. Start a new one today!",
	}
)

func (c *Calculator) message(st StreakStatus) string {
	switch {
	case st.NeverStarted:
		return c.pick(neverStartedMessages)
	case st.Status == StreakSafe:
		return fmt.Sprintf(c.pick(activeMessages), st.Current)
	case st.Status == StreakWarning:
		return fmt.Sprintf(c.pick(warningMessages), st.Current)
	default:
		return c.pick(lostMessages)
	}
}

func (c *Calculator) pick(pool []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.opts.rng.Intn(len(pool))]
}
