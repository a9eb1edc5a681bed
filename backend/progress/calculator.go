package progress

import (
	"sync"

	"progresstracker/backend/models"
)

// Calculator derives streak status and activity views from a
// LearningProgress. It never writes storage.
type Calculator struct {
	opts options
	mu   sync.Mutex // guards opts.rng
}

func NewCalculator(opts ...Option) *Calculator {
	return &Calculator{opts: buildOptions(opts)}
}

// Today returns the current calendar date in the calculator's zone.
func (c *Calculator) Today() string {
	return c.opts.today()
}

// StreakStatus reports the streak health as of today with a motivational
// message attached.
func (c *Calculator) StreakStatus(p models.LearningProgress) StreakStatus {
	st := StatusOn(p.Streaks, c.Today())
	st.Message = c.message(st)
	return st
}

type CalendarDay struct {
	Date            string `json:"date"`
	TopicsCompleted int    `json:"topicsCompleted"`
	Active          bool   `json:"active"`
	IsToday         bool   `json:"isToday"`
}

// ActivityCalendar returns one entry per day for the trailing days window,
// oldest first and ending today, including days without activity.
func (c *Calculator) ActivityCalendar(p models.LearningProgress, days int) []CalendarDay {
	if days <= 0 {
		return []CalendarDay{}
	}

	counts := c.completionsByDate(p)
	today := c.Today()
	out := make([]CalendarDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := addDays(today, -i)
		n := counts[date]
		out = append(out, CalendarDay{
			Date:            date,
			TopicsCompleted: n,
			Active:          n > 0,
			IsToday:         i == 0,
		})
	}
	return out
}

type WeeklySummary struct {
	From            string `json:"from"`
	To              string `json:"to"`
	TopicsCompleted int    `json:"topicsCompleted"`
	MinutesSpent    int    `json:"minutesSpent"`
	ActiveDays      int    `json:"activeDays"`
}

// WeeklySummary aggregates completions over the last 7 days, today included.
func (c *Calculator) WeeklySummary(p models.LearningProgress) WeeklySummary {
	today := c.Today()
	from := addDays(today, -6)
	sum := WeeklySummary{From: from, To: today}

	activeDays := make(map[string]struct{})
	for _, ct := range p.CompletedTopics {
		date := dateOf(ct.CompletedAt, c.opts.loc)
		if date < from || date > today {
			continue
		}
		sum.TopicsCompleted++
		if ct.TimeSpentMinutes != nil {
			sum.MinutesSpent += *ct.TimeSpentMinutes
		}
		activeDays[date] = struct{}{}
	}
	sum.ActiveDays = len(activeDays)
	return sum
}

func (c *Calculator) completionsByDate(p models.LearningProgress) map[string]int {
	counts := make(map[string]int)
	for _, ct := range p.CompletedTopics {
		counts[dateOf(ct.CompletedAt, c.opts.loc)]++
	}
	return counts
}
