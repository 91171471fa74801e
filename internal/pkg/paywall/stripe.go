package paywall

import (
	"context"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/subscription"

	"github.com/trendscouthq/trendscout/internal/pkg/env"
)

// paymentIntentPageSize bounds the one-time payment history scan.
const paymentIntentPageSize = 100

// Provider is the payment-provider read surface the oracle needs.
type Provider interface {
	// FindCustomerByEmail returns the customer for an email, or nil if the
	// provider has never seen this email.
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	// FindActiveSubscription returns the most relevant active subscription
	// for a customer, or nil if there is none.
	FindActiveSubscription(ctx context.Context, customerID string) (*Subscription, error)
	// ListPaymentIntents returns up to limit payment intents for a customer.
	ListPaymentIntents(ctx context.Context, customerID string, limit int64) ([]PaymentIntent, error)
}

// StripeProvider implements Provider on the Stripe SDK. The SDK entry
// points are function fields so tests can stub them without network access.
type StripeProvider struct {
	apiKey string

	listCustomers      func(params *stripe.CustomerListParams) *customer.Iter
	listSubscriptions  func(params *stripe.SubscriptionListParams) *subscription.Iter
	listPaymentIntents func(params *stripe.PaymentIntentListParams) *paymentintent.Iter
}

// NewStripeProviderFromEnv builds a provider from STRIPE_SECRET_KEY. A
// missing key is not an error here; calls fail with ErrNotConfigured so the
// misconfiguration surfaces as a 5xx instead of a boot crash.
func NewStripeProviderFromEnv() *StripeProvider {
	return NewStripeProvider(strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")))
}

// NewStripeProvider builds a provider with an explicit API key.
func NewStripeProvider(apiKey string) *StripeProvider {
	return &StripeProvider{
		apiKey:             apiKey,
		listCustomers:      customer.List,
		listSubscriptions:  subscription.List,
		listPaymentIntents: paymentintent.List,
	}
}

func (p *StripeProvider) ensureKey() error {
	if p.apiKey == "" {
		return ErrNotConfigured
	}
	stripe.Key = p.apiKey
	return nil
}

func (p *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	if err := p.ensureKey(); err != nil {
		return nil, err
	}

	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := p.listCustomers(params)
	for it.Next() {
		c := it.Customer()
		return &Customer{ID: c.ID, Email: c.Email}, nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: list customers: %v", ErrProviderUnavailable, err)
	}
	return nil, nil
}

func (p *StripeProvider) FindActiveSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	if err := p.ensureKey(); err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := p.listSubscriptions(params)
	for it.Next() {
		return normalizeSubscription(it.Subscription()), nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: list subscriptions: %v", ErrProviderUnavailable, err)
	}
	return nil, nil
}

func (p *StripeProvider) ListPaymentIntents(ctx context.Context, customerID string, limit int64) ([]PaymentIntent, error) {
	if err := p.ensureKey(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	var out []PaymentIntent
	it := p.listPaymentIntents(params)
	for it.Next() {
		pi := it.PaymentIntent()
		out = append(out, PaymentIntent{
			ID:       pi.ID,
			Status:   string(pi.Status),
			Amount:   pi.Amount,
			Currency: string(pi.Currency),
		})
		if int64(len(out)) >= limit {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: list payment intents: %v", ErrProviderUnavailable, err)
	}
	return out, nil
}

// normalizeSubscription maps the SDK subscription to the minimal local
// shape. Period end and price live on the first subscription item.
func normalizeSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.CurrentPeriodEnd > 0 {
			out.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
		if item.Price != nil {
			out.PriceAmount = item.Price.UnitAmount
			out.Currency = string(item.Price.Currency)
		}
	}
	return out
}

// IsSucceededIntentStatus reports whether a payment intent reached the
// terminal success status. Unknown statuses fail closed.
func IsSucceededIntentStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == string(stripe.PaymentIntentStatusSucceeded)
}
