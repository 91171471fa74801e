package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/trendscouthq/trendscout/internal/pkg/database"
	"github.com/trendscouthq/trendscout/internal/pkg/paywall"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
	"github.com/trendscouthq/trendscout/internal/pkg/usercontext"
)

// paywallSessions holds one entitlement controller per browsing session.
var paywallSessions = paywall.NewManager()

// paywallSessionFor returns the entitlement session controller bound to the
// current browsing session and identity.
func paywallSessionFor(c *fiber.Ctx, userCtx usercontext.UserContext) *paywall.Session {
	sid := browsingSessionID(c)
	identity := paywall.Identity{UserID: userCtx.UserID, Email: userCtx.Email}
	return paywallSessions.Get(sid, func(ctx context.Context, checkoutSessionID string) (paywall.Verdict, error) {
		oracle := paywall.NewOracleFromDB(database.GetDB())
		return oracle.Check(ctx, identity, checkoutSessionID)
	})
}

// browsingSessionID identifies the caller's browsing session. Only a
// session the request actually carried counts; a store.Get on a cookie-less
// bearer request would mint a fresh id every time, giving each API call its
// own controller and defeating the coalescing and verdict cache. Those
// callers share a stable per-user key instead.
func browsingSessionID(c *fiber.Ctx) string {
	if store := session.GetSessionStore(); store != nil {
		if sess, err := store.Get(c); err == nil && !sess.Fresh() && sess.ID() != "" {
			return sess.ID()
		}
	}
	return "user:" + usercontext.GetEmail(c)
}
