package controllers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"progresstracker/backend/config"
	"progresstracker/backend/middleware"
	"progresstracker/backend/models"
	"progresstracker/backend/progress"
	"progresstracker/backend/storage"
	"progresstracker/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultCalendarDays = 30
	maxCalendarDays     = 365
)

type ProgressController struct {
	Storage storage.Storage
	Cfg     *config.Config
	Logger  *utils.Logger
	// Now is the clock handed to every store; nil means time.Now.
	Now func() time.Time

	loc   *time.Location
	locks userLocks
}

func NewProgressController(st storage.Storage, cfg *config.Config, logger *utils.Logger) *ProgressController {
	return &ProgressController{
		Storage: st,
		Cfg:     cfg,
		Logger:  logger,
		loc:     cfg.Location(),
	}
}

type CompleteTopicRequest struct {
	Phase        string       `json:"phase" validate:"required,excludes=/"`
	Topic        string       `json:"topic" validate:"required,excludes=/"`
	Depth        models.Depth `json:"depth" validate:"required,oneof=surface mid-depth deep-water"`
	MinutesSpent *int         `json:"minutesSpent" validate:"omitempty,min=0"`
}

type StartPathRequest struct {
	PathID   string              `json:"pathId" validate:"required"`
	Category models.PathCategory `json:"category" validate:"required,oneof=persona goal role custom"`
}

type UpdatePathStepRequest struct {
	StepIndex *int `json:"stepIndex" validate:"required,min=0"`
	Completed bool `json:"completed"`
}

type UpdatePreferencesRequest struct {
	PreferredDepth       models.Depth `json:"preferredDepth" validate:"required,oneof=surface mid-depth deep-water"`
	NotificationsEnabled *bool        `json:"notificationsEnabled" validate:"required"`
}

// store opens the progress slot of the authenticated user.
func (pc *ProgressController) store(c *fiber.Ctx) (*progress.Store, uint, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	opts := []progress.Option{
		progress.WithLocation(pc.loc),
		progress.WithLogger(pc.Logger.With("user_id", userID)),
	}
	if pc.Now != nil {
		opts = append(opts, progress.WithClock(pc.Now))
	}
	return progress.NewStore(pc.Storage, progress.StorageKey(userID), opts...), userID, nil
}

// GetProgress returns the full aggregate.
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, st.Load(c.UserContext()))
}

// CompleteTopic marks a topic depth as completed.
// @Router /progress/topics [post]
func (pc *ProgressController) CompleteTopic(c *fiber.Ctx) error {
	var req CompleteTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	ctx := c.UserContext()
	before := st.Load(ctx)
	after := st.CompleteTopic(ctx, before, req.Phase, req.Topic, req.Depth, req.MinutesSpent)

	resp := fiber.Map{
		"progress": after,
		"streak":   st.Calculator().StreakStatus(after),
	}
	if m, ok := progress.CheckNewMilestone(before.Streaks.Current, after.Streaks.Current); ok {
		resp["newMilestone"] = m
	}
	return utils.Success(c, fiber.StatusOK, resp)
}

// GetTopicCompletion reports which depths of one topic are done.
// @Router /progress/topics/{phase}/{topic} [get]
func (pc *ProgressController) GetTopicCompletion(c *fiber.Ctx) error {
	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	p := st.Load(c.UserContext())
	phase, topic := c.Params("phase"), c.Params("topic")
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"phase":  phase,
		"topic":  topic,
		"depths": progress.TopicDepthCompletion(p, phase, topic),
		"count":  progress.TopicCompletionCount(p, phase, topic),
	})
}

// StartPath selects a learning path, creating its progress on first start.
// @Router /progress/paths [post]
func (pc *ProgressController) StartPath(c *fiber.Ctx) error {
	var req StartPathRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	ctx := c.UserContext()
	p := st.StartPath(ctx, st.Load(ctx), req.PathID, req.Category)
	return utils.Success(c, fiber.StatusOK, p)
}

// GetPathProgress returns one path's progress, with a completion
// percentage when totalSteps is given.
// @Router /progress/paths/{pathId} [get]
func (pc *ProgressController) GetPathProgress(c *fiber.Ctx) error {
	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	pathID := c.Params("pathId")
	p := st.Load(c.UserContext())
	pp, ok := p.PathProgress[pathID]
	if !ok {
		return utils.NotFound(c, "Path not started")
	}

	totalSteps := c.QueryInt("totalSteps", 0)
	if totalSteps < 0 {
		return utils.BadRequest(c, "totalSteps must not be negative")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"pathId":     pathID,
		"progress":   pp,
		"isCurrent":  p.CurrentPathID != nil && *p.CurrentPathID == pathID,
		"percentage": progress.PathCompletion(p, pathID, totalSteps),
	})
}

// UpdatePathStep moves a started path to another step.
// @Router /progress/paths/{pathId}/step [put]
func (pc *ProgressController) UpdatePathStep(c *fiber.Ctx) error {
	var req UpdatePathStepRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	ctx := c.UserContext()
	p := st.UpdatePathStep(ctx, st.Load(ctx), c.Params("pathId"), *req.StepIndex, req.Completed)
	return utils.Success(c, fiber.StatusOK, p)
}

// ClearPathProgress forgets a path entirely.
// @Router /progress/paths/{pathId} [delete]
func (pc *ProgressController) ClearPathProgress(c *fiber.Ctx) error {
	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	ctx := c.UserContext()
	p := st.ClearPathProgress(ctx, st.Load(ctx), c.Params("pathId"))
	return utils.Success(c, fiber.StatusOK, p)
}

// ClearCurrentPath deselects the current path, keeping its history.
// @Router /progress/paths/current [delete]
func (pc *ProgressController) ClearCurrentPath(c *fiber.Ctx) error {
	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	ctx := c.UserContext()
	p := st.ClearCurrentPath(ctx, st.Load(ctx))
	return utils.Success(c, fiber.StatusOK, p)
}

// UpdatePreferences replaces the learner's preferences.
// @Router /progress/preferences [put]
func (pc *ProgressController) UpdatePreferences(c *fiber.Ctx) error {
	var req UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	ctx := c.UserContext()
	p, err := st.UpdatePreferences(ctx, st.Load(ctx), models.Preferences{
		PreferredDepth:       req.PreferredDepth,
		NotificationsEnabled: *req.NotificationsEnabled,
	})
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.StatusOK, p)
}

// ResetProgress discards all progress.
// @Router /progress [delete]
func (pc *ProgressController) ResetProgress(c *fiber.Ctx) error {
	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	return utils.Success(c, fiber.StatusOK, st.ResetAll(c.UserContext()))
}

// ExportProgress downloads the aggregate as indented JSON.
// @Router /progress/export [get]
func (pc *ProgressController) ExportProgress(c *fiber.Ctx) error {
	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	data, err := st.Export(st.Load(c.UserContext()))
	if err != nil {
		pc.Logger.Error("export progress", "error", err)
		return utils.InternalServerError(c, "Could not export progress")
	}

	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="learning-progress-%s.json"`, st.Calculator().Today()))
	c.Type("json")
	return c.SendString(data)
}

// ImportProgress replaces the aggregate with an exported snapshot.
// @Router /progress/import [post]
func (pc *ProgressController) ImportProgress(c *fiber.Ctx) error {
	st, userID, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	unlock := pc.locks.lock(userID)
	defer unlock()

	p, err := st.Import(c.UserContext(), string(c.Body()))
	if errors.Is(err, progress.ErrMalformedImport) {
		return utils.Error(c, fiber.StatusBadRequest, err)
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not import progress")
	}
	return utils.Success(c, fiber.StatusOK, p)
}

// GetStreak reports streak health and milestones.
// @Router /progress/streak [get]
func (pc *ProgressController) GetStreak(c *fiber.Ctx) error {
	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	status := st.Calculator().StreakStatus(st.Load(c.UserContext()))
	resp := fiber.Map{
		"status":     status,
		"milestones": progress.StreakMilestones(status.Current),
	}
	if next, ok := progress.NextMilestone(status.Current); ok {
		resp["nextMilestone"] = next
	}
	return utils.Success(c, fiber.StatusOK, resp)
}

// GetCalendar returns per-day activity for the trailing window.
// @Router /progress/calendar [get]
func (pc *ProgressController) GetCalendar(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultCalendarDays)
	if days < 1 || days > maxCalendarDays {
		return utils.BadRequest(c, fmt.Sprintf("days must be between 1 and %d", maxCalendarDays))
	}

	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, st.Calculator().ActivityCalendar(st.Load(c.UserContext()), days))
}

// GetWeeklySummary aggregates the last seven days.
// @Router /progress/summary/weekly [get]
func (pc *ProgressController) GetWeeklySummary(c *fiber.Ctx) error {
	st, _, err := pc.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, st.Calculator().WeeklySummary(st.Load(c.UserContext())))
}

// userLocks serialises read-modify-write cycles per user within this
// process. Other processes sharing the storage still race.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uint]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
