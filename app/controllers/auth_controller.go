package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/trendscouthq/trendscout/app/models"
	"github.com/trendscouthq/trendscout/internal/pkg/auth"
	"github.com/trendscouthq/trendscout/internal/pkg/database"
	"github.com/trendscouthq/trendscout/internal/pkg/middleware"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
)

// HandleSessionLogin exchanges a valid access token (issued by the auth
// provider bridge) for a browser cookie session.
func HandleSessionLogin(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}

	claims, err := auth.ParseToken(strings.TrimSpace(req.Token), auth.Secret())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	user, err := models.FindUserByID(database.GetDB(), claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unknown user"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user lookup failed"})
	}
	if user.Status != models.STATUS_ACTIVE {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account disabled"})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session unavailable"})
	}
	if err := rebindBrowsingSession(sess); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session unavailable"})
	}
	sess.Set(middleware.SessionKeyUserID, user.ID)
	sess.Set(middleware.SessionKeyUserEmail, user.Email)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session save failed"})
	}

	now := time.Now()
	database.GetDB().Model(user).Update("last_login_at", &now)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// rebindBrowsingSession severs all entitlement state tied to the current
// cookie session before a new identity takes it over: the paywall
// controller keyed by the old session id is dropped, the session id is
// rotated, and the cached has-paid hint is cleared. Without this, a second
// user logging in over an existing cookie would inherit the first user's
// entitlement.
func rebindBrowsingSession(sess *fibersession.Session) error {
	if sid := sess.ID(); sid != "" {
		paywallSessions.Remove(sid)
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Delete(middleware.SessionKeyHasPaid)
	return nil
}

// HandleLogout tears down the cookie session and the entitlement session
// so any in-flight verification poll is cancelled immediately.
func HandleLogout(c *fiber.Ctx) error {
	if store := session.GetSessionStore(); store != nil {
		if sess, err := store.Get(c); err == nil {
			if sid := sess.ID(); sid != "" {
				paywallSessions.Remove(sid)
			}
			_ = sess.Destroy()
		}
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}
