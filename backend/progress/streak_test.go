package progress

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"progresstracker/backend/models"
	"progresstracker/backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name   string
		in     models.StreakData
		today  string
		want   models.StreakData
		change StreakChange
	}{
		{
			name:   "never active",
			in:     models.StreakData{},
			today:  "2025-06-01",
			want:   models.StreakData{Current: 1, Longest: 1, LastActiveDate: "2025-06-01"},
			change: StreakStarted,
		},
		{
			name:   "same day",
			in:     models.StreakData{Current: 4, Longest: 9, LastActiveDate: "2025-06-01"},
			today:  "2025-06-01",
			want:   models.StreakData{Current: 4, Longest: 9, LastActiveDate: "2025-06-01"},
			change: StreakUnchanged,
		},
		{
			name:   "next day",
			in:     models.StreakData{Current: 5, Longest: 5, LastActiveDate: "2025-01-01"},
			today:  "2025-01-02",
			want:   models.StreakData{Current: 6, Longest: 6, LastActiveDate: "2025-01-02"},
			change: StreakExtended,
		},
		{
			name:   "next day below longest",
			in:     models.StreakData{Current: 2, Longest: 10, LastActiveDate: "2025-01-01"},
			today:  "2025-01-02",
			want:   models.StreakData{Current: 3, Longest: 10, LastActiveDate: "2025-01-02"},
			change: StreakExtended,
		},
		{
			name:   "across month and year",
			in:     models.StreakData{Current: 1, Longest: 1, LastActiveDate: "2024-12-31"},
			today:  "2025-01-01",
			want:   models.StreakData{Current: 2, Longest: 2, LastActiveDate: "2025-01-01"},
			change: StreakExtended,
		},
		{
			name:   "gap",
			in:     models.StreakData{Current: 5, Longest: 5, LastActiveDate: "2025-01-01"},
			today:  "2025-01-05",
			want:   models.StreakData{Current: 1, Longest: 5, LastActiveDate: "2025-01-05"},
			change: StreakReset,
		},
		{
			name:   "future last active",
			in:     models.StreakData{Current: 3, Longest: 3, LastActiveDate: "2025-02-01"},
			today:  "2025-01-05",
			want:   models.StreakData{Current: 1, Longest: 3, LastActiveDate: "2025-01-05"},
			change: StreakClockSkew,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, change := UpdateStreak(tt.in, tt.today)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.change, change)
		})
	}
}

func TestStatusOn(t *testing.T) {
	tests := []struct {
		name    string
		in      models.StreakData
		state   StreakState
		current int
	}{
		{"never started", models.StreakData{}, StreakSafe, 0},
		{"active today", models.StreakData{Current: 4, Longest: 4, LastActiveDate: "2025-06-10"}, StreakSafe, 4},
		{"at risk", models.StreakData{Current: 4, Longest: 6, LastActiveDate: "2025-06-09"}, StreakWarning, 4},
		{"lost", models.StreakData{Current: 4, Longest: 6, LastActiveDate: "2025-06-07"}, StreakLost, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := StatusOn(tt.in, "2025-06-10")
			assert.Equal(t, tt.state, st.Status)
			assert.Equal(t, tt.current, st.Current)
			assert.Equal(t, tt.in.Longest, st.Longest)
		})
	}

	assert.True(t, StatusOn(models.StreakData{}, "2025-06-10").NeverStarted)
	assert.True(t, StatusOn(models.StreakData{Current: 1, Longest: 1, LastActiveDate: "2025-06-10"}, "2025-06-10").ActiveToday)
}

func TestStreakStatusDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	st, mem, _ := newTestStore(t, "2025-06-10")
	p := withStreak(8, 8, "2025-06-01")
	st.Save(ctx, p)
	before, err := mem.Get(ctx, testKey)
	require.NoError(t, err)

	status := st.Calculator().StreakStatus(st.Load(ctx))

	assert.Equal(t, StreakLost, status.Status)
	assert.Equal(t, 0, status.Current)
	after, err := mem.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 8, st.Load(ctx).Streaks.Current, "stored count stays stale until the next completion")
}

func TestStreakMessagesComeFromPools(t *testing.T) {
	clock := &fakeClock{}
	clock.setDay(t, "2025-06-10")
	calc := NewCalculator(WithClock(clock.Now), WithLocation(time.UTC), WithRand(rand.New(rand.NewSource(7))))

	status := calc.StreakStatus(models.DefaultLearningProgress())
	assert.Contains(t, neverStartedMessages, status.Message)

	status = calc.StreakStatus(withStreak(3, 3, "2025-06-10"))
	assert.Contains(t, formatted(activeMessages, 3), status.Message)

	status = calc.StreakStatus(withStreak(3, 3, "2025-06-09"))
	assert.Contains(t, formatted(warningMessages, 3), status.Message)

	status = calc.StreakStatus(withStreak(3, 3, "2025-06-01"))
	assert.Contains(t, lostMessages, status.Message)
}

func TestSeededMessagesAreDeterministic(t *testing.T) {
	clock := &fakeClock{}
	clock.setDay(t, "2025-06-10")
	p := withStreak(3, 3, "2025-06-10")

	a := NewCalculator(WithClock(clock.Now), WithRand(rand.New(rand.NewSource(99))))
	b := NewCalculator(WithClock(clock.Now), WithRand(rand.New(rand.NewSource(99))))
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.StreakStatus(p).Message, b.StreakStatus(p).Message)
	}
}

func formatted(pool []string, n int) []string {
	out := make([]string, len(pool))
	for i, m := range pool {
		out[i] = fmt.Sprintf(m, n)
	}
	return out
}

func TestStreakMilestones(t *testing.T) {
	assert.Empty(t, StreakMilestones(0))
	assert.Empty(t, StreakMilestones(2))
	assert.Equal(t, []Milestone{{3, "Getting Started"}, {7, "Week Warrior"}}, StreakMilestones(13))
	assert.Len(t, StreakMilestones(1000), len(Milestones()))

	prev := StreakMilestones(0)
	for n := 1; n <= 400; n++ {
		cur := StreakMilestones(n)
		assert.Subset(t, cur, prev, "streak %d", n)
		prev = cur
	}
}

func TestNextMilestone(t *testing.T) {
	m, ok := NextMilestone(0)
	require.True(t, ok)
	assert.Equal(t, 3, m.Days)

	m, ok = NextMilestone(7)
	require.True(t, ok)
	assert.Equal(t, 14, m.Days)

	_, ok = NextMilestone(365)
	assert.False(t, ok)
}

func TestCheckNewMilestone(t *testing.T) {
	m, ok := CheckNewMilestone(6, 7)
	require.True(t, ok)
	assert.Equal(t, Milestone{Days: 7, Label: "Week Warrior"}, m)

	_, ok = CheckNewMilestone(7, 7)
	assert.False(t, ok)
	_, ok = CheckNewMilestone(7, 1)
	assert.False(t, ok)

	m, ok = CheckNewMilestone(0, 30)
	require.True(t, ok)
	assert.Equal(t, 30, m.Days)
}

func TestMilestoneFiresOncePerCrossing(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newTestStore(t, "2025-01-07")
	p := withStreak(6, 6, "2025-01-06")

	next := st.CompleteTopic(ctx, p, "a", "b", models.DepthSurface, nil)
	m, ok := CheckNewMilestone(p.Streaks.Current, next.Streaks.Current)
	require.True(t, ok)
	assert.Equal(t, "Week Warrior", m.Label)

	again := st.CompleteTopic(ctx, next, "a", "c", models.DepthSurface, nil)
	_, ok = CheckNewMilestone(next.Streaks.Current, again.Streaks.Current)
	assert.False(t, ok)
}

func completedOn(t *testing.T, p *models.LearningProgress, key, at string, minutes *int) {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, at)
	require.NoError(t, err)
	p.CompletedTopics[key] = models.CompletedTopic{Depth: models.DepthSurface, CompletedAt: ts, TimeSpentMinutes: minutes}
}

func TestActivityCalendar(t *testing.T) {
	clock := &fakeClock{}
	clock.setDay(t, "2025-06-10")
	calc := NewCalculator(WithClock(clock.Now), WithLocation(time.UTC))

	p := models.DefaultLearningProgress()
	completedOn(t, &p, "a/a/surface", "2025-06-10T08:00:00Z", nil)
	completedOn(t, &p, "a/b/surface", "2025-06-10T09:00:00Z", nil)
	completedOn(t, &p, "a/c/surface", "2025-06-08T23:59:00Z", nil)
	completedOn(t, &p, "a/d/surface", "2025-05-01T12:00:00Z", nil)

	days := calc.ActivityCalendar(p, 5)

	require.Len(t, days, 5)
	assert.Equal(t, CalendarDay{Date: "2025-06-06"}, days[0])
	assert.Equal(t, CalendarDay{Date: "2025-06-07"}, days[1])
	assert.Equal(t, CalendarDay{Date: "2025-06-08", TopicsCompleted: 1, Active: true}, days[2])
	assert.Equal(t, CalendarDay{Date: "2025-06-09"}, days[3])
	assert.Equal(t, CalendarDay{Date: "2025-06-10", TopicsCompleted: 2, Active: true, IsToday: true}, days[4])

	assert.Empty(t, calc.ActivityCalendar(p, 0))
}

func TestActivityCalendarUsesLocalDates(t *testing.T) {
	clock := &fakeClock{}
	clock.setDay(t, "2025-06-10")
	calc := NewCalculator(WithClock(clock.Now), WithLocation(fixedZone("EST", -5)))

	p := models.DefaultLearningProgress()
	completedOn(t, &p, "a/a/surface", "2025-06-10T03:00:00Z", nil)

	days := calc.ActivityCalendar(p, 2)
	assert.True(t, days[0].Active, "03:00 UTC is the previous evening in EST")
	assert.False(t, days[1].Active)
}

func TestWeeklySummary(t *testing.T) {
	clock := &fakeClock{}
	clock.setDay(t, "2025-06-10")
	calc := NewCalculator(WithClock(clock.Now), WithLocation(time.UTC))

	p := models.DefaultLearningProgress()
	completedOn(t, &p, "a/a/surface", "2025-06-10T08:00:00Z", intPtr(30))
	completedOn(t, &p, "a/b/surface", "2025-06-10T09:00:00Z", nil)
	completedOn(t, &p, "a/c/surface", "2025-06-04T07:00:00Z", intPtr(15))
	completedOn(t, &p, "a/d/surface", "2025-06-03T23:00:00Z", intPtr(60))

	sum := calc.WeeklySummary(p)

	assert.Equal(t, WeeklySummary{
		From:            "2025-06-04",
		To:              "2025-06-10",
		TopicsCompleted: 3,
		MinutesSpent:    45,
		ActiveDays:      2,
	}, sum)
}

func TestStoreCalculatorSharesClock(t *testing.T) {
	clock := &fakeClock{}
	clock.setDay(t, "2025-06-10")
	st := NewStore(storage.NewMemoryStorage(), testKey, WithClock(clock.Now), WithLocation(time.UTC))

	assert.Equal(t, "2025-06-10", st.Calculator().Today())
	clock.setDay(t, "2025-06-11")
	assert.Equal(t, "2025-06-11", st.Calculator().Today())
}
