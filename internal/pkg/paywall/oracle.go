package paywall

import (
	"context"
	"log"

	"github.com/trendscouthq/trendscout/app/models"
	"gorm.io/gorm"
)

// Oracle produces the authoritative has-paid verdict for one user by
// reconciling three sources: live subscription state at the provider, the
// provider's one-time payment history, and the local payment mirror. The
// verdict is the OR of the three — fail open toward the payer, fail closed
// toward the non-payer.
type Oracle struct {
	provider Provider
	repo     Repository
}

// NewOracle creates an oracle from injected collaborators.
func NewOracle(provider Provider, repo Repository) *Oracle {
	return &Oracle{provider: provider, repo: repo}
}

// NewOracleFromDB wires the oracle to Stripe and a GORM-backed mirror.
func NewOracleFromDB(db *gorm.DB) *Oracle {
	return NewOracle(NewStripeProviderFromEnv(), NewRepository(db))
}

// Check runs one reconciliation for the given identity. checkoutSessionID
// correlates a just-completed checkout for logging; it does not change
// branching. The oracle never retries — retry policy belongs to callers,
// which know whether this is a routine page-load check or a post-checkout
// verification.
func (o *Oracle) Check(ctx context.Context, user Identity, checkoutSessionID string) (Verdict, error) {
	if user.UserID == 0 || user.Email == "" {
		return Verdict{}, ErrUnauthenticated
	}

	cust, err := o.provider.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		return Verdict{}, err
	}
	if cust == nil {
		// A user the provider has never seen cannot have paid; skip the
		// subscription and payment-intent calls entirely.
		return Verdict{}, nil
	}

	sub, err := o.provider.FindActiveSubscription(ctx, cust.ID)
	if err != nil {
		return Verdict{}, err
	}

	oneTimePaid := false
	intents, err := o.provider.ListPaymentIntents(ctx, cust.ID, paymentIntentPageSize)
	if err != nil {
		return Verdict{}, err
	}
	for _, pi := range intents {
		if IsSucceededIntentStatus(pi.Status) {
			oneTimePaid = true
			break
		}
	}

	// The mirror is an optimization, not a correctness dependency: a read
	// failure must not block a verdict the provider can answer.
	localPaid, err := o.repo.HasSucceededPayment(user.UserID)
	if err != nil {
		log.Printf("paywall: local payment lookup failed for user %d: %v", user.UserID, err)
		localPaid = false
	}

	verdict := Verdict{
		HasPaid:               sub != nil || oneTimePaid || localPaid,
		HasActiveSubscription: sub != nil,
	}
	if sub != nil && !sub.CurrentPeriodEnd.IsZero() {
		end := sub.CurrentPeriodEnd
		verdict.SubscriptionEnd = &end
	}

	if sub != nil && !localPaid {
		o.repairMirror(user.UserID, cust.ID, sub)
	}

	if checkoutSessionID != "" {
		log.Printf("paywall: post-checkout verification for user %d session %s: hasPaid=%t",
			user.UserID, checkoutSessionID, verdict.HasPaid)
	}
	return verdict, nil
}

// repairMirror inserts a succeeded payment row for an active subscription
// that is not mirrored locally yet. Best-effort: concurrent checks may
// insert duplicates, which reads tolerate; failures only get logged.
func (o *Oracle) repairMirror(userID uint, customerID string, sub *Subscription) {
	currency := sub.Currency
	if currency == "" {
		currency = "usd"
	}
	payment := &models.Payment{
		UserID:                userID,
		Provider:              models.PaymentProviderStripe,
		ProviderCustomerID:    customerID,
		ProviderTransactionID: sub.ID,
		Amount:                sub.PriceAmount,
		Currency:              currency,
		Status:                models.PaymentStatusSucceeded,
	}
	if err := o.repo.CreatePayment(payment); err != nil {
		log.Printf("paywall: mirror repair insert failed for user %d sub %s: %v", userID, sub.ID, err)
	}
}
