package paywall

import (
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubscription(t *testing.T) {
	sub := &stripe.Subscription{
		ID:     "sub_123",
		Status: stripe.SubscriptionStatusActive,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					CurrentPeriodEnd: 1790812800,
					Price: &stripe.Price{
						UnitAmount: 1900,
						Currency:   stripe.CurrencyEUR,
					},
				},
			},
		},
	}

	got := normalizeSubscription(sub)
	assert.Equal(t, "sub_123", got.ID)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, time.Unix(1790812800, 0).UTC(), got.CurrentPeriodEnd)
	assert.Equal(t, int64(1900), got.PriceAmount)
	assert.Equal(t, "eur", got.Currency)
}

func TestNormalizeSubscriptionWithoutItems(t *testing.T) {
	got := normalizeSubscription(&stripe.Subscription{ID: "sub_empty", Status: stripe.SubscriptionStatusActive})
	assert.Equal(t, "sub_empty", got.ID)
	assert.True(t, got.CurrentPeriodEnd.IsZero())
	assert.Zero(t, got.PriceAmount)
}

func TestIsSucceededIntentStatus(t *testing.T) {
	assert.True(t, IsSucceededIntentStatus("succeeded"))
	assert.True(t, IsSucceededIntentStatus(" Succeeded "))

	// Everything else fails closed, including in-progress states.
	assert.False(t, IsSucceededIntentStatus("processing"))
	assert.False(t, IsSucceededIntentStatus("requires_payment_method"))
	assert.False(t, IsSucceededIntentStatus("canceled"))
	assert.False(t, IsSucceededIntentStatus(""))
}
