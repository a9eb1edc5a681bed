// Package progress owns a learner's LearningProgress aggregate: loading and
// saving it, the named transitions that change it, and the streak views
// derived from it.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"progresstracker/backend/models"
	"progresstracker/backend/storage"
)

var (
	// ErrMalformedImport is returned by Import when the payload is not a
	// valid snapshot. Persisted state is left untouched.
	ErrMalformedImport = errors.New("progress: malformed import")
	// ErrInvalidPreferences is returned by UpdatePreferences.
	ErrInvalidPreferences = errors.New("progress: invalid preferences")
)

// StorageKey returns the storage slot for a user's progress.
func StorageKey(userID uint) string {
	return fmt.Sprintf("learning-progress:%d", userID)
}

// Store reads and writes one LearningProgress slot. Transitions never
// mutate their input: they return a new aggregate and persist it.
//
// Persistence failures are logged and swallowed; the returned aggregate is
// still valid for the rest of the session.
type Store struct {
	storage storage.Storage
	key     string
	opts    options
	calc    *Calculator
}

func NewStore(st storage.Storage, key string, opts ...Option) *Store {
	if st == nil {
		st = storage.Unavailable{}
	}
	o := buildOptions(opts)
	return &Store{
		storage: st,
		key:     key,
		opts:    o,
		calc:    &Calculator{opts: o},
	}
}

// Calculator returns a Calculator sharing the store's clock and zone.
func (s *Store) Calculator() *Calculator {
	return s.calc
}

// Load returns the stored aggregate, or the defaults when nothing is stored,
// storage is unavailable, or the stored value is malformed.
func (s *Store) Load(ctx context.Context) models.LearningProgress {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultLearningProgress()
	}
	if err != nil {
		s.opts.logger.Warn("progress storage unavailable, using defaults", "key", s.key, "error", err)
		return models.DefaultLearningProgress()
	}

	p, err := decode([]byte(raw), repair)
	if err != nil {
		s.opts.logger.Warn("discarding malformed stored progress", "key", s.key, "error", err)
		return models.DefaultLearningProgress()
	}
	return p
}

// Save persists p verbatim, replacing whatever was stored.
func (s *Store) Save(ctx context.Context, p models.LearningProgress) {
	data, err := json.Marshal(p)
	if err != nil {
		s.opts.logger.Error("encode progress", "key", s.key, "error", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		s.opts.logger.Warn("progress not persisted", "key", s.key, "error", err)
	}
}

// CompleteTopic records phase/topic/depth as completed. Repeating a key
// refreshes its timestamp without counting it again; minutesSpent is always
// added to the running total.
func (s *Store) CompleteTopic(ctx context.Context, p models.LearningProgress, phase, topic string, depth models.Depth, minutesSpent *int) models.LearningProgress {
	next := p.Clone()
	key := TopicKey(phase, topic, depth)

	var minutes *int
	if minutesSpent != nil {
		if *minutesSpent < 0 {
			s.opts.logger.Warn("ignoring negative minutes spent", "key", key, "minutes", *minutesSpent)
		} else {
			m := *minutesSpent
			minutes = &m
		}
	}

	prev, done := next.CompletedTopics[key]
	if !done {
		next.Stats.TotalTopicsCompleted++
	}
	next.CompletedTopics[key] = models.CompletedTopic{
		Depth:            depth,
		CompletedAt:      s.opts.now(),
		TimeSpentMinutes: minutes,
		Extra:            prev.Extra,
	}
	if minutes != nil {
		next.Stats.TotalTimeSpentMinutes += *minutes
	}

	today := s.opts.today()
	if next.Stats.FirstActivityDate == "" {
		next.Stats.FirstActivityDate = today
	}

	var change StreakChange
	next.Streaks, change = UpdateStreak(next.Streaks, today)
	if change == StreakClockSkew {
		s.opts.logger.Warn("last active date is not before today, streak restarted",
			"key", s.key, "last_active", p.Streaks.LastActiveDate, "today", today)
	}

	s.Save(ctx, next)
	return next
}

// StartPath makes pathID the current path, creating its progress entry on
// first start and refreshing its last access otherwise.
func (s *Store) StartPath(ctx context.Context, p models.LearningProgress, pathID string, category models.PathCategory) models.LearningProgress {
	next := p.Clone()
	now := s.opts.now()

	id, cat := pathID, category
	next.CurrentPathID = &id
	next.CurrentPathCategory = &cat

	pp, ok := next.PathProgress[pathID]
	if !ok {
		pp = models.PathProgress{
			StartedAt:      now,
			CompletedSteps: []int{},
		}
	}
	pp.LastAccessedAt = now
	next.PathProgress[pathID] = pp

	s.Save(ctx, next)
	return next
}

// UpdatePathStep moves a started path to stepIndex, optionally marking it
// completed. Paths that were never started are left alone and p is
// returned unchanged.
func (s *Store) UpdatePathStep(ctx context.Context, p models.LearningProgress, pathID string, stepIndex int, completed bool) models.LearningProgress {
	if _, ok := p.PathProgress[pathID]; !ok {
		s.opts.logger.Warn("step update for path that was never started", "key", s.key, "path_id", pathID)
		return p
	}
	if stepIndex < 0 {
		s.opts.logger.Warn("ignoring negative step index", "key", s.key, "path_id", pathID, "step", stepIndex)
		return p
	}

	next := p.Clone()
	pp := next.PathProgress[pathID]
	pp.CurrentStep = stepIndex
	if completed {
		pp.AddCompletedStep(stepIndex)
	}
	pp.LastAccessedAt = s.opts.now()
	next.PathProgress[pathID] = pp

	s.Save(ctx, next)
	return next
}

// ClearPathProgress deletes a path's history, deselecting it if current.
func (s *Store) ClearPathProgress(ctx context.Context, p models.LearningProgress, pathID string) models.LearningProgress {
	next := p.Clone()
	delete(next.PathProgress, pathID)
	if next.CurrentPathID != nil && *next.CurrentPathID == pathID {
		next.CurrentPathID = nil
		next.CurrentPathCategory = nil
	}

	s.Save(ctx, next)
	return next
}

// ClearCurrentPath deselects the current path but keeps its history.
func (s *Store) ClearCurrentPath(ctx context.Context, p models.LearningProgress) models.LearningProgress {
	next := p.Clone()
	next.CurrentPathID = nil
	next.CurrentPathCategory = nil

	s.Save(ctx, next)
	return next
}

func (s *Store) UpdatePreferences(ctx context.Context, p models.LearningProgress, prefs models.Preferences) (models.LearningProgress, error) {
	if !prefs.PreferredDepth.Valid() {
		return p, fmt.Errorf("preferred depth %q: %w", prefs.PreferredDepth, ErrInvalidPreferences)
	}
	next := p.Clone()
	if prefs.Extra == nil {
		prefs.Extra = next.Preferences.Extra
	}
	next.Preferences = prefs

	s.Save(ctx, next)
	return next, nil
}

// ResetAll deletes the stored slot and persists a fresh aggregate in its
// place.
func (s *Store) ResetAll(ctx context.Context) models.LearningProgress {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.opts.logger.Warn("progress not deleted", "key", s.key, "error", err)
	}
	fresh := models.DefaultLearningProgress()
	s.Save(ctx, fresh)
	return fresh
}

// Export renders p as indented JSON for backup.
func (s *Store) Export(p models.LearningProgress) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export progress: %w", err)
	}
	return string(data), nil
}

// Import replaces the stored aggregate with the snapshot in data. Malformed
// input returns ErrMalformedImport and leaves storage untouched.
func (s *Store) Import(ctx context.Context, data string) (models.LearningProgress, error) {
	p, err := decode([]byte(data), nil)
	if err != nil {
		return models.LearningProgress{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	s.Save(ctx, p)
	return p, nil
}

// decode parses and validates a snapshot. fix, when set, runs between the
// two to repair what an older or partial snapshot may lack.
func decode(data []byte, fix func(*models.LearningProgress)) (models.LearningProgress, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.LearningProgress{}, err
	}
	if fields == nil {
		return models.LearningProgress{}, errors.New("snapshot is null")
	}

	var p models.LearningProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return models.LearningProgress{}, err
	}
	if fix != nil {
		fix(&p)
	}
	if err := validate(p); err != nil {
		return models.LearningProgress{}, err
	}
	return p, nil
}

// repair restores invariants a stored snapshot can break by missing fields,
// such as a streaks object without longest.
func repair(p *models.LearningProgress) {
	if p.Streaks.Current > p.Streaks.Longest {
		p.Streaks.Longest = p.Streaks.Current
	}
	for id, pp := range p.PathProgress {
		steps := pp.CompletedSteps[:0]
		for _, step := range pp.CompletedSteps {
			if step >= 0 {
				steps = append(steps, step)
			}
		}
		pp.CompletedSteps = steps
		p.PathProgress[id] = pp
	}
}

func validate(p models.LearningProgress) error {
	if p.Streaks.Current < 0 || p.Streaks.Longest < p.Streaks.Current {
		return fmt.Errorf("inconsistent streak %d/%d", p.Streaks.Current, p.Streaks.Longest)
	}
	if p.Streaks.LastActiveDate != "" {
		if _, err := time.Parse(dateLayout, p.Streaks.LastActiveDate); err != nil {
			return fmt.Errorf("last active date: %w", err)
		}
	}
	if p.Stats.TotalTopicsCompleted < 0 || p.Stats.TotalTimeSpentMinutes < 0 {
		return errors.New("negative stats")
	}
	if p.CurrentPathCategory != nil && !p.CurrentPathCategory.Valid() {
		return fmt.Errorf("unknown path category %q", *p.CurrentPathCategory)
	}
	for key, ct := range p.CompletedTopics {
		if !ct.Depth.Valid() {
			return fmt.Errorf("topic %q: unknown depth %q", key, ct.Depth)
		}
		if !strings.HasSuffix(key, "/"+string(ct.Depth)) {
			return fmt.Errorf("topic %q: key does not match depth %q", key, ct.Depth)
		}
		if ct.TimeSpentMinutes != nil && *ct.TimeSpentMinutes < 0 {
			return fmt.Errorf("topic %q: negative minutes", key)
		}
	}
	for id, pp := range p.PathProgress {
		if pp.CurrentStep < 0 {
			return fmt.Errorf("path %q: negative step", id)
		}
		for _, step := range pp.CompletedSteps {
			if step < 0 {
				return fmt.Errorf("path %q: negative completed step %d", id, step)
			}
		}
	}
	return nil
}
