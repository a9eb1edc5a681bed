package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthRank(t *testing.T) {
	assert.Equal(t, 0, DepthSurface.Rank())
	assert.Equal(t, 1, DepthMidDepth.Rank())
	assert.Equal(t, 2, DepthDeepWater.Rank())
	assert.Equal(t, -1, Depth("abyss").Rank())
	assert.False(t, Depth("").Valid())
}

func TestUnmarshalFillsNestedDefaults(t *testing.T) {
	var p LearningProgress
	require.NoError(t, json.Unmarshal([]byte(`{"preferences": {"notificationsEnabled": false}, "streaks": {"current": 1, "longest": 1}}`), &p))

	assert.Equal(t, DepthSurface, p.Preferences.PreferredDepth)
	assert.False(t, p.Preferences.NotificationsEnabled)
	assert.Equal(t, StreakData{Current: 1, Longest: 1}, p.Streaks)
	assert.NotNil(t, p.CompletedTopics)
	assert.NotNil(t, p.PathProgress)
	assert.Nil(t, p.Extra)
}

func TestUnmarshalNormalizesNulls(t *testing.T) {
	var p LearningProgress
	raw := `{
		"currentPathId": null,
		"currentPathCategory": "goal",
		"completedTopics": null,
		"pathProgress": {"p": {"currentStep": 2, "completedSteps": null}}
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Nil(t, p.CurrentPathCategory, "category is cleared when no path is selected")
	assert.NotNil(t, p.CompletedTopics)
	assert.Equal(t, []int{}, p.PathProgress["p"].CompletedSteps)
}

func TestUnknownFieldsRoundTrip(t *testing.T) {
	var p LearningProgress
	require.NoError(t, json.Unmarshal([]byte(`{"version": 3, "badges": {"gold": true}}`), &p))
	require.Len(t, p.Extra, 2)

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.JSONEq(t, `3`, string(fields["version"]))
	assert.JSONEq(t, `{"gold": true}`, string(fields["badges"]))
	assert.Contains(t, fields, "streaks")
}

func TestNestedUnknownFieldsRoundTrip(t *testing.T) {
	raw := `{
		"completedTopics": {"a/b/surface": {"depth": "surface", "completedAt": "2025-05-30T08:00:00Z", "rating": 4}},
		"pathProgress": {"p": {"currentStep": 1, "completedSteps": [0], "pinned": true}},
		"streaks": {"current": 2, "longest": 2, "lastActiveDate": "2025-05-30", "freezes": 1},
		"preferences": {"preferredDepth": "deep-water", "notificationsEnabled": false, "theme": "dark"},
		"stats": {"totalTopicsCompleted": 1, "badgesEarned": 3}
	}`
	var p LearningProgress
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, DepthDeepWater, p.Preferences.PreferredDepth)
	assert.JSONEq(t, `"dark"`, string(p.Preferences.Extra["theme"]))
	assert.Nil(t, p.Extra)

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var back struct {
		CompletedTopics map[string]map[string]json.RawMessage `json:"completedTopics"`
		PathProgress    map[string]map[string]json.RawMessage `json:"pathProgress"`
		Streaks         map[string]json.RawMessage            `json:"streaks"`
		Preferences     map[string]json.RawMessage            `json:"preferences"`
		Stats           map[string]json.RawMessage            `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.JSONEq(t, `4`, string(back.CompletedTopics["a/b/surface"]["rating"]))
	assert.JSONEq(t, `true`, string(back.PathProgress["p"]["pinned"]))
	assert.JSONEq(t, `1`, string(back.Streaks["freezes"]))
	assert.JSONEq(t, `"dark"`, string(back.Preferences["theme"]))
	assert.JSONEq(t, `false`, string(back.Preferences["notificationsEnabled"]))
	assert.JSONEq(t, `3`, string(back.Stats["badgesEarned"]))
}

func TestUnmarshalDedupesCompletedSteps(t *testing.T) {
	var p LearningProgress
	require.NoError(t, json.Unmarshal([]byte(`{"pathProgress": {"p": {"completedSteps": [3, 1, 3, 2, 1]}}}`), &p))

	assert.Equal(t, []int{1, 2, 3}, p.PathProgress["p"].CompletedSteps)
}

func TestKnownFieldsWinOverExtra(t *testing.T) {
	p := DefaultLearningProgress()
	p.Extra = map[string]json.RawMessage{"streaks": json.RawMessage(`"bogus"`)}

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var back LearningProgress
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, StreakData{}, back.Streaks)
}

func TestCloneIsDeep(t *testing.T) {
	id, cat, minutes := "path", PathCategoryRole, 5
	p := DefaultLearningProgress()
	p.CurrentPathID = &id
	p.CurrentPathCategory = &cat
	p.CompletedTopics["a/b/surface"] = CompletedTopic{Depth: DepthSurface, CompletedAt: time.Unix(0, 0).UTC(), TimeSpentMinutes: &minutes}
	p.PathProgress["path"] = PathProgress{CompletedSteps: []int{1}}
	p.Extra = map[string]json.RawMessage{"x": json.RawMessage(`1`)}
	p.Preferences.Extra = map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)}

	c := p.Clone()
	c.Preferences.Extra["theme"] = json.RawMessage(`"light"`)
	*c.CurrentPathID = "other"
	*c.CompletedTopics["a/b/surface"].TimeSpentMinutes = 99
	c.PathProgress["path"].CompletedSteps[0] = 7
	c.Extra["x"][0] = '2'
	delete(c.CompletedTopics, "a/b/surface")

	assert.Equal(t, "path", *p.CurrentPathID)
	assert.Equal(t, 5, *p.CompletedTopics["a/b/surface"].TimeSpentMinutes)
	assert.Equal(t, []int{1}, p.PathProgress["path"].CompletedSteps)
	assert.Equal(t, json.RawMessage(`1`), p.Extra["x"])
	assert.Equal(t, json.RawMessage(`"dark"`), p.Preferences.Extra["theme"])
}

func TestAddCompletedStep(t *testing.T) {
	pp := PathProgress{CompletedSteps: []int{}}
	pp.AddCompletedStep(4)
	pp.AddCompletedStep(1)
	pp.AddCompletedStep(4)

	assert.Equal(t, []int{1, 4}, pp.CompletedSteps)
	assert.True(t, pp.HasCompletedStep(1))
	assert.False(t, pp.HasCompletedStep(2))
}

func TestPathCategoryValid(t *testing.T) {
	for _, c := range []PathCategory{PathCategoryPersona, PathCategoryGoal, PathCategoryRole, PathCategoryCustom} {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, PathCategory("random").Valid())
}
