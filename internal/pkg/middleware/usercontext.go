package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trendscouthq/trendscout/internal/pkg/auth"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
	"github.com/trendscouthq/trendscout/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request.
// Identity comes from a bearer access token when present, falling back to
// the web session cookie. This centralizes user resolution so controllers
// only ever read usercontext.GetUserContext(c).
func UserContextMiddleware(c *fiber.Ctx) error {
	if claims := bearerClaims(c); claims != nil {
		setContext(c, usercontext.UserContext{
			UserID:     claims.UserID,
			Email:      claims.Email,
			IsLoggedIn: true,
			HasPaid:    session.GetSessionValue(c, SessionKeyHasPaid) == "true",
		})
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		setContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}
	sess, err := store.Get(c)
	if err != nil {
		setContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	userID, ok := sess.Get(SessionKeyUserID).(uint)
	if !ok || userID == 0 {
		setContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	email, _ := sess.Get(SessionKeyUserEmail).(string)
	setContext(c, usercontext.UserContext{
		UserID:     userID,
		Email:      email,
		IsLoggedIn: true,
		HasPaid:    session.GetSessionValue(c, SessionKeyHasPaid) == "true",
	})
	return c.Next()
}

func bearerClaims(c *fiber.Ctx) *auth.Claims {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	claims, err := auth.ParseToken(tokenStr, auth.Secret())
	if err != nil {
		return nil
	}
	return claims
}

func setContext(c *fiber.Ctx, ctx usercontext.UserContext) {
	c.Locals(usercontext.KeyUserContext, ctx)
	c.Locals(usercontext.KeyLoggedIn, ctx.IsLoggedIn)
}
