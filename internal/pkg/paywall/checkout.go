package paywall

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/trendscouthq/trendscout/internal/pkg/env"
)

// Query markers the provider appends to the return URL. The dashboard
// return handler consumes and strips them so reloads never re-trigger the
// verification flow.
const (
	QueryParamPayment         = "payment"
	QueryParamCheckoutSession = "checkout_session_id"

	PaymentMarkerSuccess   = "success"
	PaymentMarkerCancelled = "cancelled"
)

// checkoutSessionIDPlaceholder is substituted by Stripe on redirect.
const checkoutSessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// CheckoutClient starts hosted checkout sessions. The SDK call is a
// function field so tests can stub it.
type CheckoutClient struct {
	apiKey    string
	priceID   string
	returnURL string

	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewCheckoutClientFromEnv builds a client from STRIPE_SECRET_KEY,
// STRIPE_PRICE_ID and PUBLIC_DOMAIN.
func NewCheckoutClientFromEnv() *CheckoutClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	return &CheckoutClient{
		apiKey:        strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		priceID:       strings.TrimSpace(env.GetEnv("STRIPE_PRICE_ID", "")),
		returnURL:     base + "/dashboard",
		createSession: stripesession.New,
	}
}

// Start creates a hosted checkout session for a user and returns the
// redirect URL plus the provider-issued checkout session id.
func (c *CheckoutClient) Start(ctx context.Context, user Identity, searchID string) (*CheckoutRedirect, error) {
	if user.UserID == 0 || user.Email == "" {
		return nil, ErrUnauthenticated
	}
	if c.apiKey == "" || c.priceID == "" {
		return nil, ErrNotConfigured
	}
	stripe.Key = c.apiKey

	successURL := fmt.Sprintf("%s?%s=%s&%s=%s",
		c.returnURL, QueryParamPayment, PaymentMarkerSuccess,
		QueryParamCheckoutSession, checkoutSessionIDPlaceholder)
	cancelURL := fmt.Sprintf("%s?%s=%s", c.returnURL, QueryParamPayment, PaymentMarkerCancelled)

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", fmt.Sprintf("%d", user.UserID))
	if searchID != "" {
		params.AddMetadata("search_id", searchID)
	}

	sess, err := c.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrProviderUnavailable, err)
	}
	return &CheckoutRedirect{URL: sess.URL, SessionID: sess.ID}, nil
}
