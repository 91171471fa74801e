package paywall

import (
	"context"
	"errors"
	"testing"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubCheckoutClient(fn func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)) *CheckoutClient {
	return &CheckoutClient{
		apiKey:        "sk_test_123",
		priceID:       "price_123",
		returnURL:     "https://app.example.com/dashboard",
		createSession: fn,
	}
}

func TestCheckoutStartBuildsRedirect(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	client := stubCheckoutClient(func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}, nil
	})

	redirect, err := client.Start(context.Background(), testUser, "a2c1f0d8-0000-4000-8000-000000000001")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", redirect.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", redirect.URL)

	require.NotNil(t, captured)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *captured.Mode)
	assert.Equal(t, testUser.Email, *captured.CustomerEmail)
	assert.Equal(t,
		"https://app.example.com/dashboard?payment=success&checkout_session_id={CHECKOUT_SESSION_ID}",
		*captured.SuccessURL)
	assert.Equal(t,
		"https://app.example.com/dashboard?payment=cancelled",
		*captured.CancelURL)
	require.Len(t, captured.LineItems, 1)
	assert.Equal(t, "price_123", *captured.LineItems[0].Price)
	assert.Equal(t, "42", captured.Metadata["user_id"])
	assert.Equal(t, "a2c1f0d8-0000-4000-8000-000000000001", captured.Metadata["search_id"])
}

func TestCheckoutStartRequiresIdentity(t *testing.T) {
	client := stubCheckoutClient(nil)
	_, err := client.Start(context.Background(), Identity{}, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCheckoutStartRequiresConfiguration(t *testing.T) {
	client := &CheckoutClient{returnURL: "https://app.example.com/dashboard"}
	_, err := client.Start(context.Background(), testUser, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCheckoutStartWrapsProviderErrors(t *testing.T) {
	client := stubCheckoutClient(func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("stripe 500")
	})

	_, err := client.Start(context.Background(), testUser, "")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
