package progress

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"progresstracker/backend/models"
	"progresstracker/backend/storage"

	"github.com/stretchr/testify/require"
)

const testKey = "learning-progress:42"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// setDay moves the clock to 10:00 UTC on date (YYYY-MM-DD).
func (c *fakeClock) setDay(t *testing.T, date string) {
	t.Helper()
	d, err := time.Parse(dateLayout, date)
	require.NoError(t, err)
	c.now = d.Add(10 * time.Hour)
}

func newTestStore(t *testing.T, date string) (*Store, *storage.MemoryStorage, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	clock.setDay(t, date)
	mem := storage.NewMemoryStorage()
	st := NewStore(mem, testKey,
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithRand(rand.New(rand.NewSource(1))),
	)
	return st, mem, clock
}

// quotaExceeded reads fine but refuses every write.
type quotaExceeded struct {
	*storage.MemoryStorage
}

func (quotaExceeded) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

// deleteRecorder remembers which keys were deleted.
type deleteRecorder struct {
	*storage.MemoryStorage
	deleted []string
}

func (d *deleteRecorder) Delete(ctx context.Context, key string) error {
	d.deleted = append(d.deleted, key)
	return d.MemoryStorage.Delete(ctx, key)
}

func intPtr(n int) *int { return &n }

func fixedZone(name string, offsetHours int) *time.Location {
	return time.FixedZone(name, offsetHours*60*60)
}

func withStreak(current, longest int, last string) models.LearningProgress {
	p := models.DefaultLearningProgress()
	p.Streaks = models.StreakData{Current: current, Longest: longest, LastActiveDate: last}
	return p
}
