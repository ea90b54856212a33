package billing

import (
	"time"

	"github.com/carson-networks/deadline-server/internal/service"
)

// Subscription is the API response model for a user's billing state.
type Subscription struct {
	State            string `json:"state" enum:"trial,active,expired" doc:"Effective subscription state"`
	TrialEndsAt      string `json:"trialEndsAt" doc:"RFC3339 end of the trial"`
	TrialExtended    bool   `json:"trialExtended" doc:"Whether the one-time extension was used"`
	CanExtendTrial   bool   `json:"canExtendTrial" doc:"Whether the trial may still be extended"`
	RemindersEnabled bool   `json:"remindersEnabled" doc:"Whether reminders are sent for this user's transactions"`
}

type SubscriptionOutput struct {
	Body Subscription
}

func subscriptionFrom(s *service.Subscription) Subscription {
	return Subscription{
		State:            string(s.State),
		TrialEndsAt:      s.TrialEndsAt.UTC().Format(time.RFC3339),
		TrialExtended:    s.TrialExtended,
		CanExtendTrial:   s.CanExtendTrial,
		RemindersEnabled: s.RemindersEnabled,
	}
}
