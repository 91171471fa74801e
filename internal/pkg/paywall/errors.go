package paywall

import "errors"

// Error taxonomy for entitlement checks. Callers branch on these to pick
// HTTP status codes and retry behavior; anything else is an internal fault.
var (
	// ErrUnauthenticated means the request carried no resolvable identity.
	// Never retried; the caller must force a sign-in.
	ErrUnauthenticated = errors.New("paywall: unauthenticated")

	// ErrProviderUnavailable wraps transient payment-provider failures.
	// Safe to retry. A verdict is never granted on this path.
	ErrProviderUnavailable = errors.New("paywall: payment provider unavailable")

	// ErrNotConfigured means the provider secret is missing server-side.
	// Fatal for the deployment, not retryable by the caller.
	ErrNotConfigured = errors.New("paywall: payment provider not configured")
)
