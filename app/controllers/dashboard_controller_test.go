package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscouthq/trendscout/internal/pkg/paywall"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
	"github.com/trendscouthq/trendscout/internal/pkg/usercontext"
)

func loggedInAs(userID uint, email string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			UserID: userID, Email: email, IsLoggedIn: true,
		})
		c.Locals(usercontext.KeyLoggedIn, true)
		return c.Next()
	}
}

func dashboardApp(userID uint, email string) *fiber.App {
	// No cookie store installed, so the controller key is the stable
	// per-user fallback and tests can reach into the manager.
	session.SetSessionStore(nil)
	app := fiber.New()
	app.Get("/dashboard", loggedInAs(userID, email), HandleDashboard)
	return app
}

func TestDashboardScrubsCancelledMarker(t *testing.T) {
	app := dashboardApp(21, "cancelled@example.com")

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard?payment=cancelled", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"), "both query markers are stripped")
}

func TestDashboardScrubsSuccessMarkerAndStartsVerification(t *testing.T) {
	email := "fresh-buyer@example.com"
	app := dashboardApp(22, email)

	resp, err := app.Test(httptest.NewRequest("GET",
		"/dashboard?payment=success&checkout_session_id=cs_test_123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"), "a reload of the clean path cannot re-trigger the flow")

	// The poll's first attempt is immediate, so the controller leaves the
	// Unknown state right away.
	sess := paywallSessions.Get("user:"+email, staticCheck(paywall.Verdict{}))
	assert.Eventually(t, func() bool {
		return sess.State() == paywall.StateResolved
	}, time.Second, 10*time.Millisecond, "background verification never ran")
}

func TestDashboardSuccessMarkerWhenAlreadyPaid(t *testing.T) {
	email := "repeat-buyer@example.com"
	app := dashboardApp(23, email)

	sess := paywallSessions.Get("user:"+email, staticCheck(paywall.Verdict{HasPaid: true}))
	_, err := sess.Refresh(context.Background())
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET",
		"/dashboard?payment=success&checkout_session_id=cs_test_456", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.True(t, sess.HasPaid())
}

func TestDashboardPlainRequestReturnsState(t *testing.T) {
	email := "settled@example.com"
	app := dashboardApp(24, email)

	sess := paywallSessions.Get("user:"+email, staticCheck(paywall.Verdict{HasPaid: true}))
	_, err := sess.Refresh(context.Background())
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Checking bool `json:"checking"`
		HasPaid  bool `json:"hasPaid"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Checking)
	assert.True(t, body.HasPaid)
}

func TestDashboardRequiresLogin(t *testing.T) {
	session.SetSessionStore(nil)
	app := fiber.New()
	app.Get("/dashboard", HandleDashboard)

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard?payment=success&checkout_session_id=cs_test_789", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
