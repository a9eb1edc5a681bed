package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Depth is the content complexity tier of a topic.
type Depth string

const (
	DepthSurface   Depth = "surface"
	DepthMidDepth  Depth = "mid-depth"
	DepthDeepWater Depth = "deep-water"
)

// Depths lists every depth in ascending order.
var Depths = []Depth{DepthSurface, DepthMidDepth, DepthDeepWater}

func (d Depth) Valid() bool {
	return d.Rank() >= 0
}

// Rank returns the position of d in the surface < mid-depth < deep-water
// ordering, or -1 for an unknown depth.
func (d Depth) Rank() int {
	for i, known := range Depths {
		if d == known {
			return i
		}
	}
	return -1
}

// PathCategory classifies where a learning path comes from.
type PathCategory string

const (
	PathCategoryPersona PathCategory = "persona"
	PathCategoryGoal    PathCategory = "goal"
	PathCategoryRole    PathCategory = "role"
	PathCategoryCustom  PathCategory = "custom"
)

func (c PathCategory) Valid() bool {
	switch c {
	case PathCategoryPersona, PathCategoryGoal, PathCategoryRole, PathCategoryCustom:
		return true
	default:
		return false
	}
}

// The value types below keep JSON keys they do not know in Extra, so a
// newer client's fields survive a load/save cycle at every level.

type CompletedTopic struct {
	Depth            Depth     `json:"depth"`
	CompletedAt      time.Time `json:"completedAt"`
	TimeSpentMinutes *int      `json:"timeSpentMinutes,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type completedTopicFields CompletedTopic

var knownCompletedTopicFields = newFieldSet("depth", "completedAt", "timeSpentMinutes")

func (ct CompletedTopic) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(completedTopicFields(ct))
	if err != nil {
		return nil, err
	}
	return withUnknownFields(known, ct.Extra)
}

func (ct *CompletedTopic) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	decoded := completedTopicFields(*ct)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := unknownFields(data, knownCompletedTopicFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*ct = CompletedTopic(decoded)
	return nil
}

type PathProgress struct {
	StartedAt      time.Time `json:"startedAt"`
	CurrentStep    int       `json:"currentStep"`
	CompletedSteps []int     `json:"completedSteps"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

type pathProgressFields PathProgress

var knownPathProgressFields = newFieldSet("startedAt", "currentStep", "completedSteps", "lastAccessedAt")

func (pp PathProgress) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(pathProgressFields(pp))
	if err != nil {
		return nil, err
	}
	return withUnknownFields(known, pp.Extra)
}

func (pp *PathProgress) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	decoded := pathProgressFields(*pp)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := unknownFields(data, knownPathProgressFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*pp = PathProgress(decoded)
	return nil
}

// HasCompletedStep reports whether step is in the completed set.
func (pp PathProgress) HasCompletedStep(step int) bool {
	for _, s := range pp.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// StreakData holds the persisted streak counters. LastActiveDate is a local
// calendar date (YYYY-MM-DD), empty when the learner was never active.
type StreakData struct {
	Current        int    `json:"current"`
	Longest        int    `json:"longest"`
	LastActiveDate string `json:"lastActiveDate"`

	Extra map[string]json.RawMessage `json:"-"`
}

type streakDataFields StreakData

var knownStreakFields = newFieldSet("current", "longest", "lastActiveDate")

func (s StreakData) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(streakDataFields(s))
	if err != nil {
		return nil, err
	}
	return withUnknownFields(known, s.Extra)
}

func (s *StreakData) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	decoded := streakDataFields(*s)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := unknownFields(data, knownStreakFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*s = StreakData(decoded)
	return nil
}

type Preferences struct {
	PreferredDepth       Depth `json:"preferredDepth"`
	NotificationsEnabled bool  `json:"notificationsEnabled"`

	Extra map[string]json.RawMessage `json:"-"`
}

type preferencesFields Preferences

var knownPreferenceFields = newFieldSet("preferredDepth", "notificationsEnabled")

func (p Preferences) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(preferencesFields(p))
	if err != nil {
		return nil, err
	}
	return withUnknownFields(known, p.Extra)
}

func (p *Preferences) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	decoded := preferencesFields(*p)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := unknownFields(data, knownPreferenceFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*p = Preferences(decoded)
	return nil
}

type ProgressStats struct {
	TotalTopicsCompleted  int    `json:"totalTopicsCompleted"`
	TotalTimeSpentMinutes int    `json:"totalTimeSpentMinutes"`
	FirstActivityDate     string `json:"firstActivityDate"`

	Extra map[string]json.RawMessage `json:"-"`
}

type progressStatsFields ProgressStats

var knownStatsFields = newFieldSet("totalTopicsCompleted", "totalTimeSpentMinutes", "firstActivityDate")

func (s ProgressStats) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(progressStatsFields(s))
	if err != nil {
		return nil, err
	}
	return withUnknownFields(known, s.Extra)
}

func (s *ProgressStats) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	decoded := progressStatsFields(*s)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := unknownFields(data, knownStatsFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*s = ProgressStats(decoded)
	return nil
}

// LearningProgress is the persisted aggregate for one learner.
//
// Extra carries top-level fields this version does not understand.
type LearningProgress struct {
	CurrentPathID       *string                   `json:"currentPathId"`
	CurrentPathCategory *PathCategory             `json:"currentPathCategory"`
	CompletedTopics     map[string]CompletedTopic `json:"completedTopics"`
	PathProgress        map[string]PathProgress   `json:"pathProgress"`
	Streaks             StreakData                `json:"streaks"`
	Preferences         Preferences               `json:"preferences"`
	Stats               ProgressStats             `json:"stats"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownProgressFields = newFieldSet(
	"currentPathId",
	"currentPathCategory",
	"completedTopics",
	"pathProgress",
	"streaks",
	"preferences",
	"stats",
)

// learningProgressFields has the same layout as LearningProgress without its
// JSON methods.
type learningProgressFields LearningProgress

func DefaultPreferences() Preferences {
	return Preferences{
		PreferredDepth:       DepthSurface,
		NotificationsEnabled: true,
	}
}

// DefaultLearningProgress returns the aggregate a learner starts with.
func DefaultLearningProgress() LearningProgress {
	return LearningProgress{
		CompletedTopics: map[string]CompletedTopic{},
		PathProgress:    map[string]PathProgress{},
		Preferences:     DefaultPreferences(),
	}
}

func (p LearningProgress) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(learningProgressFields(p))
	if err != nil {
		return nil, err
	}
	return withUnknownFields(known, p.Extra)
}

// UnmarshalJSON decodes on top of the defaults, so any field missing from
// data (including nested ones) keeps its default value.
func (p *LearningProgress) UnmarshalJSON(data []byte) error {
	extra, err := unknownFields(data, knownProgressFields)
	if err != nil {
		return err
	}

	decoded := learningProgressFields(DefaultLearningProgress())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	out := LearningProgress(decoded)
	out.Extra = extra
	out.normalize()
	*p = out
	return nil
}

func (p *LearningProgress) normalize() {
	if p.CompletedTopics == nil {
		p.CompletedTopics = map[string]CompletedTopic{}
	}
	if p.PathProgress == nil {
		p.PathProgress = map[string]PathProgress{}
	}
	for id, pp := range p.PathProgress {
		pp.CompletedSteps = uniqueSorted(pp.CompletedSteps)
		p.PathProgress[id] = pp
	}
	if p.CurrentPathID == nil {
		p.CurrentPathCategory = nil
	}
	if !p.Preferences.PreferredDepth.Valid() {
		p.Preferences.PreferredDepth = DepthSurface
	}
}

// Clone returns a deep copy of p.
func (p LearningProgress) Clone() LearningProgress {
	out := p
	if p.CurrentPathID != nil {
		id := *p.CurrentPathID
		out.CurrentPathID = &id
	}
	if p.CurrentPathCategory != nil {
		cat := *p.CurrentPathCategory
		out.CurrentPathCategory = &cat
	}

	out.CompletedTopics = make(map[string]CompletedTopic, len(p.CompletedTopics))
	for k, v := range p.CompletedTopics {
		if v.TimeSpentMinutes != nil {
			m := *v.TimeSpentMinutes
			v.TimeSpentMinutes = &m
		}
		v.Extra = cloneUnknownFields(v.Extra)
		out.CompletedTopics[k] = v
	}

	out.PathProgress = make(map[string]PathProgress, len(p.PathProgress))
	for k, v := range p.PathProgress {
		steps := make([]int, len(v.CompletedSteps))
		copy(steps, v.CompletedSteps)
		v.CompletedSteps = steps
		v.Extra = cloneUnknownFields(v.Extra)
		out.PathProgress[k] = v
	}

	out.Streaks.Extra = cloneUnknownFields(p.Streaks.Extra)
	out.Preferences.Extra = cloneUnknownFields(p.Preferences.Extra)
	out.Stats.Extra = cloneUnknownFields(p.Stats.Extra)
	out.Extra = cloneUnknownFields(p.Extra)
	return out
}

// AddCompletedStep inserts step into the completed set, keeping it sorted.
func (pp *PathProgress) AddCompletedStep(step int) {
	if pp.HasCompletedStep(step) {
		return
	}
	pp.CompletedSteps = append(pp.CompletedSteps, step)
	sort.Ints(pp.CompletedSteps)
}

// uniqueSorted returns steps sorted ascending without duplicates, never nil.
func uniqueSorted(steps []int) []int {
	out := make([]int, 0, len(steps))
	out = append(out, steps...)
	sort.Ints(out)
	n := 0
	for i, step := range out {
		if i > 0 && step == out[n-1] {
			continue
		}
		out[n] = step
		n++
	}
	return out[:n]
}
