package progress

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

func dateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// daysBetween returns the number of calendar days from `from` to `to`.
// Both are parsed as UTC midnights so DST never shifts the result.
func daysBetween(from, to string) (int, error) {
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", from, err)
	}
	t, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", to, err)
	}
	return int(t.Sub(f).Hours() / 24), nil
}

// addDays shifts a YYYY-MM-DD date by n days.
func addDays(date string, n int) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, n).Format(dateLayout)
}
