package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trendscouthq/trendscout/app/models"
	"github.com/trendscouthq/trendscout/internal/pkg/database"
	"github.com/trendscouthq/trendscout/internal/pkg/middleware"
	"github.com/trendscouthq/trendscout/internal/pkg/paywall"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
	"github.com/trendscouthq/trendscout/internal/pkg/usercontext"
)

type checkPaymentRequest struct {
	CheckoutSessionID string `json:"checkout_session_id"`
}

type createCheckoutRequest struct {
	SearchID string `json:"search_id" validate:"required,uuid4"`
}

// HandleCheckPayment runs one entitlement check for the authenticated user
// and returns the verdict. Errors never yield hasPaid=true.
func HandleCheckPayment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req checkPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	checkoutSessionID := strings.TrimSpace(req.CheckoutSessionID)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var verdict paywall.Verdict
	var err error
	if checkoutSessionID != "" {
		// A checkout completion must never be coalesced away.
		verdict, err = paywallSessionFor(c, userCtx).VerifyCheckout(ctx, checkoutSessionID)
	} else {
		verdict, err = paywallSessionFor(c, userCtx).Refresh(ctx)
	}
	if err != nil {
		if errors.Is(err, paywall.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		log.Printf("payment check failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment check failed"})
	}

	// Cache a hint so page loads can gate without a provider round trip.
	if verdict.HasPaid {
		_ = session.SetSessionValue(c, middleware.SessionKeyHasPaid, "true")
	} else {
		_ = session.SetSessionValue(c, middleware.SessionKeyHasPaid, "false")
	}

	return c.Status(fiber.StatusOK).JSON(verdict)
}

// HandleCreateCheckout starts a hosted checkout session for the trend
// search the user wants to unlock and returns the redirect URL.
func HandleCreateCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "search_id must be a valid id"})
	}

	search, err := models.FindTrendSearchByUUID(database.GetDB(), req.SearchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "search not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search lookup failed"})
	}
	if search.UserID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "search belongs to another user"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := paywall.NewCheckoutClientFromEnv()
	redirect, err := client.Start(ctx, paywall.Identity{UserID: userCtx.UserID, Email: userCtx.Email}, search.UUID)
	if err != nil {
		if errors.Is(err, paywall.ErrNotConfigured) {
			log.Printf("checkout start failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "service unavailable"})
		}
		log.Printf("checkout start failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not start checkout"})
	}

	return c.Status(fiber.StatusOK).JSON(redirect)
}
