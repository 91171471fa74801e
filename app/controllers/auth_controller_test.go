package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscouthq/trendscout/internal/pkg/middleware"
	"github.com/trendscouthq/trendscout/internal/pkg/paywall"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
	"github.com/trendscouthq/trendscout/internal/pkg/usercontext"
)

func staticCheck(v paywall.Verdict) paywall.CheckFunc {
	return func(ctx context.Context, checkoutSessionID string) (paywall.Verdict, error) {
		return v, nil
	}
}

func withMemorySessionStore(t *testing.T) *fibersession.Store {
	t.Helper()
	store := fibersession.New()
	session.SetSessionStore(store)
	t.Cleanup(func() { session.SetSessionStore(nil) })
	return store
}

func TestRebindBrowsingSessionSeversOldEntitlement(t *testing.T) {
	store := withMemorySessionStore(t)
	app := fiber.New()

	var oldSID, newSID string
	var oldController, newController *paywall.Session
	var hintAfter interface{}

	// First user signs in and resolves a paid verdict on the cookie session.
	app.Post("/first", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		oldSID = sess.ID()
		oldController = paywallSessions.Get(oldSID, staticCheck(paywall.Verdict{HasPaid: true}))
		if _, err := oldController.Refresh(context.Background()); err != nil {
			return err
		}
		sess.Set(middleware.SessionKeyHasPaid, "true")
		return sess.Save()
	})
	// Second user logs in over the same cookie.
	app.Post("/second", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if err := rebindBrowsingSession(sess); err != nil {
			return err
		}
		newSID = sess.ID()
		hintAfter = sess.Get(middleware.SessionKeyHasPaid)
		newController = paywallSessions.Get(newSID, staticCheck(paywall.Verdict{}))
		return sess.Save()
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/first", nil))
	require.NoError(t, err)
	require.True(t, oldController.HasPaid())

	req := httptest.NewRequest("POST", "/second", nil)
	for _, ck := range resp.Cookies() {
		req.AddCookie(ck)
	}
	_, err = app.Test(req)
	require.NoError(t, err)

	assert.NotEqual(t, oldSID, newSID, "the session id rotates at login")
	assert.Nil(t, hintAfter, "the has-paid hint does not survive a login")
	assert.NotSame(t, oldController, newController)
	assert.False(t, newController.HasPaid(), "the new identity starts without entitlement")

	replacement := paywallSessions.Get(oldSID, staticCheck(paywall.Verdict{}))
	assert.NotSame(t, oldController, replacement, "the old controller was dropped from the manager")
}

func TestBrowsingSessionIDStableForBearerClients(t *testing.T) {
	withMemorySessionStore(t)
	app := fiber.New()
	app.Get("/sid", func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			UserID: 7, Email: "api@example.com", IsLoggedIn: true,
		})
		return c.SendString(browsingSessionID(c))
	})

	var keys []string
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/sid", nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		keys = append(keys, string(body))
	}

	assert.Equal(t, "user:api@example.com", keys[0], "cookie-less requests key by user, not by minted session")
	assert.Equal(t, keys[0], keys[1], "repeated bearer calls share one controller key")
}

func TestBrowsingSessionIDUsesCarriedCookie(t *testing.T) {
	store := withMemorySessionStore(t)
	app := fiber.New()

	var savedSID string
	app.Post("/start", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		savedSID = sess.ID()
		sess.Set(middleware.SessionKeyUserID, uint(7))
		return sess.Save()
	})
	app.Get("/sid", func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			UserID: 7, Email: "web@example.com", IsLoggedIn: true,
		})
		return c.SendString(browsingSessionID(c))
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/start", nil))
	require.NoError(t, err)
	require.NotEmpty(t, savedSID)

	req := httptest.NewRequest("GET", "/sid", nil)
	for _, ck := range resp.Cookies() {
		req.AddCookie(ck)
	}
	resp2, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)

	assert.Equal(t, savedSID, string(body))
}
