package billing

import (
	"time"

	"github.com/carson-networks/deadline-server/internal/storage/user"
)

const (
	TrialDays         = 15
	ExtendedTrialDays = 22
)

// State is the effective subscription state of a user at a point in time.
type State string

const (
	StateTrial   State = "trial"
	StateActive  State = "active"
	StateExpired State = "expired"
)

// Policy decides access from the subscription fields stored on a user.
type Policy struct {
	TrialDays         int
	ExtendedTrialDays int
}

func DefaultPolicy() Policy {
	return Policy{
		TrialDays:         TrialDays,
		ExtendedTrialDays: ExtendedTrialDays,
	}
}

// TrialEndsAt is the instant the user's trial lapses, accounting for the one-time extension.
func (p Policy) TrialEndsAt(u *user.User) time.Time {
	days := p.TrialDays
	if u.TrialExtended {
		days = p.ExtendedTrialDays
	}
	return u.TrialStartedAt.AddDate(0, 0, days)
}

// Evaluate resolves the user's state at now. A stored trial past its end evaluates as expired.
func (p Policy) Evaluate(u *user.User, now time.Time) State {
	switch u.SubscriptionStatus {
	case user.SubscriptionActive:
		return StateActive
	case user.SubscriptionTrial:
		if now.Before(p.TrialEndsAt(u)) {
			return StateTrial
		}
	}
	return StateExpired
}

// Allows reports whether the user may reach subscription-gated endpoints.
func (p Policy) Allows(u *user.User, now time.Time) bool {
	return p.Evaluate(u, now) != StateExpired
}

// RemindersEnabled reports whether the scanner should send reminders for the user's transactions.
func (p Policy) RemindersEnabled(u *user.User, now time.Time) bool {
	return p.Allows(u, now)
}

// CanExtendTrial reports whether the one-time extension is still available.
func (p Policy) CanExtendTrial(u *user.User) bool {
	return u.SubscriptionStatus == user.SubscriptionTrial && !u.TrialExtended
}
