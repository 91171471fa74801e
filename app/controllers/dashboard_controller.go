package controllers

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/trendscouthq/trendscout/app/models"
	"github.com/trendscouthq/trendscout/internal/pkg/database"
	"github.com/trendscouthq/trendscout/internal/pkg/entitlements"
	"github.com/trendscouthq/trendscout/internal/pkg/mail"
	"github.com/trendscouthq/trendscout/internal/pkg/metrics/counter"
	"github.com/trendscouthq/trendscout/internal/pkg/paywall"
	"github.com/trendscouthq/trendscout/internal/pkg/usercontext"
)

// HandleDashboard is the checkout return target. It consumes the
// payment=success / payment=cancelled query markers, kicks off background
// verification for a completed checkout, and always redirects to the clean
// path so a reload cannot re-trigger the flow.
func HandleDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	switch strings.TrimSpace(c.Query(paywall.QueryParamPayment)) {
	case paywall.PaymentMarkerCancelled:
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Payment cancelled. You have not been charged - you can try again anytime.",
		}).Redirect("/dashboard")

	case paywall.PaymentMarkerSuccess:
		checkoutSessionID := strings.TrimSpace(c.Query(paywall.QueryParamCheckoutSession))
		sess := paywallSessionFor(c, userCtx)
		if checkoutSessionID != "" && !sess.HasPaid() {
			userID := userCtx.UserID
			email := userCtx.Email
			sess.OnUnlock(func() {
				log.Printf("dashboard: access unlocked for user %d", userID)
				if err := mail.SendUnlockNotification(email); err != nil {
					log.Printf("dashboard: unlock mail to user %d failed: %v", userID, err)
				}
			})
			// The provider may lag the redirect by a few seconds; verify in
			// the background while the user sees the "verifying" notice.
			sess.StartCheckoutPoll(context.Background(), checkoutSessionID)
		}
		return flash.WithSuccess(c, fiber.Map{
			"type":    "success",
			"message": "Payment received. We are verifying your access...",
		}).Redirect("/dashboard")
	}

	sess := paywallSessionFor(c, userCtx)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"checking": sess.State() == paywall.StateChecking,
		"hasPaid":  sess.HasPaid() || userCtx.HasPaid,
		"flash":    flash.Get(c),
	})
}

// HandleGetSearch returns one trend search with its results gated by the
// caller's entitlement: unpaid users get the preview slice only.
func HandleGetSearch(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	search, err := models.FindTrendSearchByUUID(database.GetDB(), c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "search not found"})
	}
	if search.UserID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "search belongs to another user"})
	}

	if err := counter.AddSearchView(search.ID); err != nil {
		log.Printf("dashboard: view counter failed for search %d: %v", search.ID, err)
	}

	var results []json.RawMessage
	if search.ResultsJSON != "" {
		if err := json.Unmarshal([]byte(search.ResultsJSON), &results); err != nil {
			log.Printf("dashboard: bad results payload for search %d: %v", search.ID, err)
			results = nil
		}
	}

	hasPaid := userCtx.HasPaid || paywallSessionFor(c, userCtx).HasPaid()
	access := entitlements.FromVerdict(hasPaid)
	visible := entitlements.VisibleResults(access, len(results))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"uuid":    search.UUID,
		"query":   search.Query,
		"access":  access,
		"total":   len(results),
		"results": results[:visible],
	})
}

// HandleCreateSearch records a new trend-discovery run. Result generation
// itself happens out of band; this only creates the correlation row the
// checkout flow references.
func HandleCreateSearch(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	search := &models.TrendSearch{
		UserID: userCtx.UserID,
		Query:  strings.TrimSpace(req.Query),
	}
	if err := database.GetDB().Create(search).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create search"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":  search.UUID,
		"query": search.Query,
	})
}
