package paywall

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State of the entitlement session for one browsing session.
type State int

const (
	// StateUnknown is the initial state before any check has completed.
	StateUnknown State = iota
	// StateChecking means a check operation is in flight.
	StateChecking
	// StateResolved is terminal per check cycle, but re-enterable.
	StateResolved
)

// Post-checkout verification budget: the provider's state may lag the
// redirect by a few seconds, so the first attempt is immediate and the rest
// are spaced on a fixed interval (~18-20s worst case).
const (
	DefaultPollAttempts = 10
	DefaultPollInterval = 2 * time.Second
)

// CheckFunc runs one entitlement check for the session's identity. The
// checkout session id is empty for routine checks.
type CheckFunc func(ctx context.Context, checkoutSessionID string) (Verdict, error)

// Session owns the cached entitlement verdict for one browsing session and
// drives the post-checkout verification polling loop. Routine re-checks are
// coalesced to a single in-flight call; checkout verifications always issue
// a fresh call because a completed checkout must never be silently dropped.
type Session struct {
	check CheckFunc

	// PollAttempts and PollInterval configure the checkout poll budget.
	// Tests inject short intervals to run the loop deterministically.
	PollAttempts int
	PollInterval time.Duration

	mu         sync.Mutex
	state      State
	verdict    Verdict
	signedOut  bool
	pollCancel context.CancelFunc

	group      singleflight.Group
	unlockOnce sync.Once
	onUnlock   func()
}

// NewSession creates a session controller around a check function.
func NewSession(check CheckFunc) *Session {
	return &Session{
		check:        check,
		PollAttempts: DefaultPollAttempts,
		PollInterval: DefaultPollInterval,
	}
}

// OnUnlock registers a callback fired exactly once per session, the first
// time a check resolves to HasPaid=true. Later confirmations are silent.
func (s *Session) OnUnlock(fn func()) {
	s.mu.Lock()
	s.onUnlock = fn
	s.mu.Unlock()
}

// State returns the current controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Verdict returns the most recently resolved verdict.
func (s *Session) Verdict() Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdict
}

// HasPaid returns the cached entitlement answer.
func (s *Session) HasPaid() bool {
	return s.Verdict().HasPaid
}

// Refresh issues a routine check. Concurrent callers are coalesced onto one
// underlying call and all observe the same resolved verdict.
func (s *Session) Refresh(ctx context.Context) (Verdict, error) {
	s.mu.Lock()
	if s.signedOut {
		v := s.verdict
		s.mu.Unlock()
		return v, nil
	}
	s.state = StateChecking
	s.mu.Unlock()

	res, err, _ := s.group.Do("check", func() (interface{}, error) {
		return s.check(ctx, "")
	})
	var v Verdict
	if res != nil {
		v = res.(Verdict)
	}
	return s.resolve(v, err)
}

// VerifyCheckout issues a fresh check carrying a checkout session id,
// bypassing the single-flight guard.
func (s *Session) VerifyCheckout(ctx context.Context, checkoutSessionID string) (Verdict, error) {
	s.mu.Lock()
	if s.signedOut {
		v := s.verdict
		s.mu.Unlock()
		return v, nil
	}
	s.state = StateChecking
	s.mu.Unlock()

	v, err := s.check(ctx, checkoutSessionID)
	return s.resolve(v, err)
}

// resolve applies a check result. On error the prior verdict is kept: a
// transient failure must never lock out a payer, and never grants access
// either.
func (s *Session) resolve(v Verdict, err error) (Verdict, error) {
	s.mu.Lock()
	if s.signedOut {
		prior := s.verdict
		s.mu.Unlock()
		return prior, err
	}
	s.state = StateResolved
	if err != nil {
		prior := s.verdict
		s.mu.Unlock()
		return prior, err
	}
	s.verdict = v
	notify := v.HasPaid
	s.mu.Unlock()

	if notify {
		s.unlockOnce.Do(func() {
			s.mu.Lock()
			fn := s.onUnlock
			s.mu.Unlock()
			if fn != nil {
				fn()
			}
		})
	}
	return v, nil
}

// Poll is a handle on one running checkout verification loop.
type Poll struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	attempts int
}

// Cancel stops any future scheduled attempts. An individual in-flight check
// is not aborted, only the loop around it.
func (p *Poll) Cancel() {
	p.cancel()
}

// Done is closed when the loop terminates (success, exhaustion or cancel).
func (p *Poll) Done() <-chan struct{} {
	return p.done
}

// Attempts returns how many checks the loop has issued.
func (p *Poll) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func (p *Poll) bump() {
	p.mu.Lock()
	p.attempts++
	p.mu.Unlock()
}

// StartCheckoutPoll begins the bounded post-checkout verification loop:
// first attempt immediate, subsequent attempts on a fixed interval, until
// the verdict flips to true or the attempt budget is exhausted. Exhaustion
// is a soft failure — the session stays Resolved(false) and the caller
// keeps showing preview mode. The loop is cancelled by Cancel, by the
// context, or by SignOut.
func (s *Session) StartCheckoutPoll(ctx context.Context, checkoutSessionID string) *Poll {
	pollCtx, cancel := context.WithCancel(ctx)
	p := &Poll{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if s.pollCancel != nil {
		s.pollCancel()
	}
	s.pollCancel = cancel
	attempts := s.PollAttempts
	interval := s.PollInterval
	s.mu.Unlock()

	go func() {
		defer close(p.done)
		defer cancel()

		for i := 0; i < attempts; i++ {
			if i > 0 {
				// The timer starts after the previous attempt completed, so
				// a slow check never causes back-to-back attempts.
				timer := time.NewTimer(interval)
				select {
				case <-pollCtx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if pollCtx.Err() != nil {
				return
			}

			p.bump()
			v, err := s.VerifyCheckout(pollCtx, checkoutSessionID)
			if err != nil {
				// Treated the same as "not paid yet"; the budget is the
				// only retry policy.
				continue
			}
			if v.HasPaid {
				return
			}
		}
	}()
	return p
}

// SignOut resets the session to Resolved(false) and cancels any running
// poll loop. Called when the identity becomes absent.
func (s *Session) SignOut() {
	s.mu.Lock()
	cancel := s.pollCancel
	s.pollCancel = nil
	s.signedOut = true
	s.state = StateResolved
	s.verdict = Verdict{}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
