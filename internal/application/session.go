package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/bnema/docbrain-cli/internal/ports"
)

// DefaultRenewalLead is how far ahead of credential expiry a scheduled
// renewal runs.
const DefaultRenewalLead = 5 * time.Minute

type SessionOption func(*Session)

func WithRenewalLead(lead time.Duration) SessionOption {
	return func(s *Session) {
		if lead > 0 {
			s.lead = lead
		}
	}
}

// WithSignedOutHandler sets the callback invoked when the session ends,
// whether by explicit logout or unrecoverable renewal failure.
func WithSignedOutHandler(fn func()) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.onSignedOut = fn
		}
	}
}

func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session owns the credential record lifecycle. It keeps at most one pending
// renewal timer armed, serializes renewal attempts so concurrent triggers
// produce a single network call, and follows external store mutations.
type Session struct {
	store  ports.CredentialStore
	auth   ports.AuthClient
	clock  ports.Clock
	logger *slog.Logger

	lead        time.Duration
	onSignedOut func()

	mu           sync.Mutex
	timer        *time.Timer
	loginSurface bool
	lastAccess   string

	// renewMu serializes renewal network calls; see renew.
	renewMu sync.Mutex
}

func NewSession(store ports.CredentialStore, auth ports.AuthClient, clock ports.Clock, opts ...SessionOption) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &Session{
		store:       store,
		auth:        auth,
		clock:       clock,
		logger:      slog.Default(),
		lead:        DefaultRenewalLead,
		onSignedOut: func() {},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetLoginSurface marks that the unauthenticated entry surface is active.
// While set, an expired record is reported as unauthenticated instead of
// triggering a renewal, so the entry surface cannot loop on renewal.
func (s *Session) SetLoginSurface(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginSurface = active
}

// CheckAuthenticated reads the credential record and reports whether the
// session is usable. An expired record triggers exactly one renewal attempt;
// a failed renewal clears the record and signs the session out, because a
// stale credential left in place would fail every subsequent request.
func (s *Session) CheckAuthenticated(ctx context.Context) bool {
	record, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredentials) {
			s.logger.Warn("load credentials", "err", err)
		}
		return false
	}
	if !record.Complete() {
		// A partial record is unrecoverable.
		s.signOut(ctx)
		return false
	}

	s.rememberAccess(record.AccessToken)

	if !record.Expired(s.clock.Now()) {
		return true
	}
	if s.onLoginSurface() {
		return false
	}
	if err := s.renew(ctx); err != nil {
		s.logger.Error("credential renewal failed", "err", err)
		s.signOut(ctx)
		return false
	}

	return true
}

// ScheduleRenewal arms the single pending renewal timer. Any previously
// armed timer is cancelled first. The delay clamps at zero so a record
// already inside the lead window renews immediately.
func (s *Session) ScheduleRenewal(ctx context.Context, forceImmediate bool) {
	record, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredentials) {
			s.logger.Warn("load credentials for renewal schedule", "err", err)
		}
		return
	}
	if record.RefreshToken == "" || record.ExpiresAt.IsZero() {
		return
	}

	delay := record.ExpiresAt.Sub(s.clock.Now()) - s.lead
	if delay < 0 || forceImmediate {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, s.renewCycle)
}

// renewCycle runs on timer fire: renew against the renewal credential as
// stored right now, then arm the next one-shot timer against the new expiry.
// The schedule is a chain of one-shot timers because the correct delay
// changes every cycle.
func (s *Session) renewCycle() {
	ctx := context.Background()
	if err := s.renew(ctx); err != nil {
		s.logger.Error("scheduled renewal failed", "err", err)
		s.signOut(ctx)
		return
	}
	s.ScheduleRenewal(ctx, false)
}

// renew performs one credential renewal. Concurrent callers serialize on
// renewMu; the loser of the race re-reads the store and returns without a
// second network call when the winner already wrote a fresh record.
func (s *Session) renew(ctx context.Context) error {
	s.renewMu.Lock()
	defer s.renewMu.Unlock()

	record, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if record.RefreshToken == "" {
		return domain.ErrNoCredentials
	}
	if !record.ExpiringSoon(s.clock.Now(), s.lead) {
		// A concurrent attempt renewed while this one waited.
		return nil
	}

	renewed, err := s.auth.Renew(ctx, record.RefreshToken)
	if err != nil {
		return fmt.Errorf("renew credentials: %w", err)
	}
	if err := s.store.Save(ctx, renewed); err != nil {
		return fmt.Errorf("store renewed credentials: %w", err)
	}
	s.rememberAccess(renewed.AccessToken)

	return nil
}

// Login authenticates, stores the resulting record, confirms it is usable,
// and arms the renewal schedule.
func (s *Session) Login(ctx context.Context, email, password string) error {
	record, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	if !s.CheckAuthenticated(ctx) {
		return errors.New("verify stored credentials: record unusable after login")
	}
	s.ScheduleRenewal(ctx, false)

	return nil
}

// Logout cancels the pending renewal timer, clears the store, and invokes
// the signed-out handler unless the entry surface is already active.
func (s *Session) Logout(ctx context.Context) {
	s.signOut(ctx)
}

// Resume re-checks authentication after the process was suspended or the
// terminal regained focus, covering timers that never fired across an
// expiry boundary. On success the renewal schedule is re-armed.
func (s *Session) Resume(ctx context.Context) bool {
	if !s.CheckAuthenticated(ctx) {
		return false
	}
	s.ScheduleRenewal(ctx, false)
	return true
}

// FollowStore watches the credential store and re-checks authentication
// whenever the access credential actually changed under us, rather than
// trusting the in-memory view. Self-inflicted writes are filtered out by
// comparing against the last access credential this session observed.
func (s *Session) FollowStore(ctx context.Context) error {
	changes, err := s.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch credential store: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				record, err := s.store.Load(ctx)
				if err != nil {
					if errors.Is(err, domain.ErrNoCredentials) && s.currentAccess() != "" {
						// Signed out elsewhere: the surface must learn it.
						s.rememberAccess("")
						s.stopTimer()
						if !s.onLoginSurface() {
							s.onSignedOut()
						}
					}
					continue
				}
				if record.AccessToken == s.currentAccess() {
					continue
				}
				s.CheckAuthenticated(ctx)
			}
		}
	}()

	return nil
}

// Stop cancels the pending renewal timer without touching stored state.
func (s *Session) Stop() {
	s.stopTimer()
}

func (s *Session) signOut(ctx context.Context) {
	s.stopTimer()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear credentials", "err", err)
	}
	s.rememberAccess("")
	if !s.onLoginSurface() {
		s.onSignedOut()
	}
}

func (s *Session) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) onLoginSurface() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginSurface
}

func (s *Session) rememberAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = token
}

func (s *Session) currentAccess() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}
