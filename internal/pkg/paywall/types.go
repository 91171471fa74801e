package paywall

import "time"

// Verdict is the result of one entitlement check. It is recomputed on every
// call and never persisted; the session controller caches the latest value
// in memory for the lifetime of the browsing session.
type Verdict struct {
	HasPaid               bool       `json:"hasPaid"`
	SubscriptionEnd       *time.Time `json:"subscriptionEnd"`
	HasActiveSubscription bool       `json:"hasActiveSubscription"`
}

// Identity is the resolved caller of a check.
type Identity struct {
	UserID uint
	Email  string
}

// Customer is the minimal provider-side customer representation.
type Customer struct {
	ID    string
	Email string
}

// Subscription is the minimal representation of an active provider
// subscription relevant to the verdict.
type Subscription struct {
	ID               string
	Status           string
	CurrentPeriodEnd time.Time
	PriceAmount      int64
	Currency         string
}

// PaymentIntent is the minimal representation of a one-time payment
// attempt at the provider (legacy non-subscription purchase path).
type PaymentIntent struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

// CheckoutRedirect is the result of starting a hosted checkout.
type CheckoutRedirect struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}
