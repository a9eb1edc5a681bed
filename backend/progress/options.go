package progress

import (
	"math/rand"
	"time"

	"progresstracker/backend/utils"
)

type options struct {
	clock  func() time.Time
	loc    *time.Location
	logger *utils.Logger
	rng    *rand.Rand
}

// Option configures a Store or Calculator.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLocation sets the zone whose calendar days streaks are counted in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func WithLogger(logger *utils.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRand sets the source used to pick motivational messages.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func buildOptions(opts []Option) options {
	o := options{
		clock: time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = utils.NopLogger()
	}
	if o.loc == nil {
		o.loc = time.UTC
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(o.clock().UnixNano()))
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().UTC().Truncate(time.Millisecond)
}

// today is the current calendar date in the configured zone.
func (o options) today() string {
	return dateOf(o.clock(), o.loc)
}
