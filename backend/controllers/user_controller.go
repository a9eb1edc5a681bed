package controllers

import (
	"progresstracker/backend/middleware"
	"progresstracker/backend/models"
	"progresstracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB       *gorm.DB
	Progress *ProgressController
}

func NewUserController(db *gorm.DB, progress *ProgressController) *UserController {
	return &UserController{DB: db, Progress: progress}
}

// GetProfile returns the authenticated user with a progress summary.
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	st, _, err := uc.Progress.store(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	p := st.Load(c.UserContext())

	var logins int64
	if err := uc.DB.Model(&models.LoginHistory{}).Where("user_id = ?", userID).Count(&logins).Error; err != nil {
		uc.Progress.Logger.Warn("count logins", "user_id", userID, "error", err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"role":        user.Role,
		"created_at":  user.CreatedAt,
		"logins":      logins,
		"stats":       p.Stats,
		"streak":      st.Calculator().StreakStatus(p),
		"preferences": p.Preferences,
		"currentPath": p.CurrentPathID,
	})
}
