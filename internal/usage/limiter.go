package usage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimitExceeded is returned by Take once the ceiling for the day is reached
var ErrLimitExceeded = errors.New("usage limit exceeded")

// Scopes used by the web form
const (
	ScopeDaily   = "daily"
	ScopeSession = "session"

	// GlobalSubject is the subject of the site-wide daily counter
	GlobalSubject = "global"
)

// Allowance reports the state of a counter after a Take or Peek
type Allowance struct {
	Allowed   bool      `json:"allowed"`
	Used      int64     `json:"used"`
	Remaining int64     `json:"remaining"` // -1 when unlimited
	Ceiling   int64     `json:"ceiling"`   // 0 when unlimited
	ResetAt   time.Time `json:"reset_at"`
}

// Unlimited reports whether the counter has no ceiling
func (a Allowance) Unlimited() bool {
	return a.Ceiling <= 0
}

// Limiter is a get-and-increment counter with a fixed ceiling that resets at
// each calendar-date boundary in its location
type Limiter struct {
	store    Store
	scope    string
	ceiling  int64
	location *time.Location
	now      func() time.Time
}

// LimiterOption configures a Limiter
type LimiterOption func(*Limiter)

// WithLocation sets the time zone whose midnight resets the counter (default UTC)
func WithLocation(loc *time.Location) LimiterOption {
	return func(l *Limiter) {
		if loc != nil {
			l.location = loc
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter creates a limiter for one scope. A ceiling <= 0 means unlimited.
func NewLimiter(store Store, scope string, ceiling int, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		store:    store,
		scope:    scope,
		ceiling:  int64(ceiling),
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Scope returns the limiter's scope name
func (l *Limiter) Scope() string {
	return l.scope
}

// Take records one use by subject. When the ceiling has already been reached
// the use is not recorded and Take returns the allowance with Allowed=false
// and ErrLimitExceeded.
func (l *Limiter) Take(ctx context.Context, subject string) (Allowance, error) {
	key, resetAt := l.key(subject)

	n, err := l.store.Incr(ctx, key, resetAt)
	if err != nil {
		return Allowance{}, fmt.Errorf("usage %s: %w", l.scope, err)
	}

	a := l.allowance(n, resetAt)
	if l.ceiling > 0 && n > l.ceiling {
		// Refused uses are not recorded
		if _, err := l.store.Decr(ctx, key); err != nil {
			return a, fmt.Errorf("usage %s: %w", l.scope, err)
		}
		a.Allowed = false
		return a, ErrLimitExceeded
	}
	a.Allowed = true
	return a, nil
}

// Refund gives back one use taken today by subject, for a submission that was
// admitted but could not be served
func (l *Limiter) Refund(ctx context.Context, subject string) (Allowance, error) {
	key, resetAt := l.key(subject)

	n, err := l.store.Decr(ctx, key)
	if err != nil {
		return Allowance{}, fmt.Errorf("usage %s: %w", l.scope, err)
	}

	a := l.allowance(n, resetAt)
	a.Allowed = l.ceiling <= 0 || n < l.ceiling
	return a, nil
}

// Peek reports the current allowance without recording a use
func (l *Limiter) Peek(ctx context.Context, subject string) (Allowance, error) {
	key, resetAt := l.key(subject)

	n, err := l.store.Get(ctx, key)
	if err != nil {
		return Allowance{}, fmt.Errorf("usage %s: %w", l.scope, err)
	}

	a := l.allowance(n, resetAt)
	a.Allowed = l.ceiling <= 0 || n < l.ceiling
	return a, nil
}

// key returns the counter key for today and the next midnight
func (l *Limiter) key(subject string) (string, time.Time) {
	now := l.now().In(l.location)
	year, month, day := now.Date()
	resetAt := time.Date(year, month, day+1, 0, 0, 0, 0, l.location)
	return fmt.Sprintf("%s:%s:%s", l.scope, subject, now.Format("2006-01-02")), resetAt
}

func (l *Limiter) allowance(n int64, resetAt time.Time) Allowance {
	a := Allowance{
		Used:      n,
		Remaining: -1,
		Ceiling:   l.ceiling,
		ResetAt:   resetAt,
	}
	if l.ceiling > 0 {
		if a.Used > l.ceiling {
			a.Used = l.ceiling
		}
		a.Remaining = l.ceiling - a.Used
	} else {
		a.Ceiling = 0
	}
	return a
}
