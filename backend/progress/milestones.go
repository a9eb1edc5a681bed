package progress

// Milestone is a streak length that unlocks a named achievement.
type Milestone struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

// milestones is sorted by Days ascending.
var milestones = []Milestone{
	{Days: 3, Label: "Getting Started"},
	{Days: 7, Label: "Week Warrior"},
	{Days: 14, Label: "Two-Week Champion"},
	{Days: 30, Label: "Monthly Master"},
	{Days: 60, Label: "Dedicated Scholar"},
	{Days: 100, Label: "Century Club"},
	{Days: 365, Label: "Year of Learning"},
}

// Milestones returns the full threshold table.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// StreakMilestones returns every milestone reached by a streak of n days.
func StreakMilestones(n int) []Milestone {
	out := []Milestone{}
	for _, m := range milestones {
		if m.Days > n {
			break
		}
		out = append(out, m)
	}
	return out
}

// NextMilestone returns the smallest milestone above n.
func NextMilestone(n int) (Milestone, bool) {
	for _, m := range milestones {
		if m.Days > n {
			return m, true
		}
	}
	return Milestone{}, false
}

// CheckNewMilestone reports the milestone crossed when a streak moves from
// oldStreak to newStreak. If several were crossed at once the highest wins.
func CheckNewMilestone(oldStreak, newStreak int) (Milestone, bool) {
	var (
		found Milestone
		ok    bool
	)
	for _, m := range milestones {
		if m.Days > oldStreak && m.Days <= newStreak {
			found, ok = m, true
		}
	}
	return found, ok
}
